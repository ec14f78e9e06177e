package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pawplates/engine/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildRecommendationPrompt_capsHistory(t *testing.T) {
	history := []models.MealHistoryEntry{
		{Date: day(1), RecipeID: "r-1"},
		{Date: day(2), RecipeID: "r-2"},
		{Date: day(3), RecipeID: "r-3"},
		{Date: day(4), RecipeID: "r-4"},
		{Date: day(5), RecipeID: "r-5"},
		{Date: day(6), RecipeID: "r-6"},
		{Date: day(7), RecipeID: "r-7"},
	}

	prompt := buildRecommendationPrompt(models.DogProfile{}, models.Preferences{}, history, 5)

	assert.Contains(t, prompt, "r-7")
	assert.Contains(t, prompt, "r-3")
	assert.NotContains(t, prompt, "r-2", "only the 5 most recent meals belong in the prompt")
	assert.NotContains(t, prompt, "r-1")
}

func TestBuildRecommendationPrompt_sortsUnorderedHistory(t *testing.T) {
	history := []models.MealHistoryEntry{
		{Date: day(2), RecipeID: "middle"},
		{Date: day(9), RecipeID: "newest"},
		{Date: day(1), RecipeID: "oldest"},
	}

	prompt := buildRecommendationPrompt(models.DogProfile{}, models.Preferences{}, history, 5)

	newest := strings.Index(prompt, "newest")
	middle := strings.Index(prompt, "middle")
	oldest := strings.Index(prompt, "oldest")

	assert.Less(t, newest, middle)
	assert.Less(t, middle, oldest)
}

func TestBuildRecommendationPrompt_emptyInputs(t *testing.T) {
	prompt := buildRecommendationPrompt(models.DogProfile{}, models.Preferences{}, nil, 5)

	assert.Contains(t, prompt, "Dietary Restrictions: none")
	assert.Contains(t, prompt, "Recent Meals: none")
}

func TestBuildProfileText_orderIndependentSets(t *testing.T) {
	a := models.Preferences{PreferredProteins: []string{"beef", "salmon"}}
	b := models.Preferences{PreferredProteins: []string{"salmon", "beef"}}

	assert.Equal(t, buildProfileText(a, nil), buildProfileText(b, nil),
		"set ordering must not change the embedded text")
}

func TestBuildProfileText_changesWithHistory(t *testing.T) {
	prefs := models.Preferences{CookingStyle: "raw"}
	without := buildProfileText(prefs, nil)
	with := buildProfileText(prefs, []models.MealHistoryEntry{{Date: day(1), RecipeID: "r-1"}})

	assert.NotEqual(t, without, with)
}

