package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pawplates/engine/internal/models"
)

// joinOrNone joins values with commas after sorting, or returns "none".
// Sorting keeps the output independent of caller ordering, which keeps
// prompts (and the embeddings derived from them) deterministic.
func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}

	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)

	return strings.Join(sorted, ", ")
}

// formatPreferences serializes prefs with a fixed field order.
func formatPreferences(prefs models.Preferences) string {
	var b strings.Builder

	fmt.Fprintf(&b, "preferred proteins: %s; ", joinOrNone(prefs.PreferredProteins))
	fmt.Fprintf(&b, "avoided ingredients: %s; ", joinOrNone(prefs.AvoidedIngredients))

	cookingStyle := prefs.CookingStyle
	if cookingStyle == "" {
		cookingStyle = "any"
	}

	fmt.Fprintf(&b, "cooking style: %s; ", cookingStyle)
	fmt.Fprintf(&b, "meals per day: %d; ", prefs.MealsPerDay)

	budget := prefs.BudgetLevel
	if budget == "" {
		budget = "any"
	}

	fmt.Fprintf(&b, "budget: %s", budget)

	return b.String()
}

// recentHistory returns at most limit entries, most recent first. The input
// is copied and re-sorted rather than trusted, since callers assemble it
// from external sources.
func recentHistory(history []models.MealHistoryEntry, limit int) []models.MealHistoryEntry {
	sorted := make([]models.MealHistoryEntry, len(history))
	copy(sorted, history)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return sorted
}

// buildRecommendationPrompt assembles the natural-language prompt for the
// profile-driven flow. Same inputs always produce the same prompt.
func buildRecommendationPrompt(
	profile models.DogProfile, prefs models.Preferences, history []models.MealHistoryEntry, historyLimit int,
) string {
	var b strings.Builder

	b.WriteString("Given the following dog profile and owner preferences, recommend a suitable recipe:\n")
	fmt.Fprintf(&b, "Age: %d years\n", profile.Age)
	fmt.Fprintf(&b, "Weight: %.1f kg\n", profile.Weight)
	fmt.Fprintf(&b, "Breed: %s\n", profile.Breed)
	fmt.Fprintf(&b, "Activity Level: %s\n", profile.ActivityLevel)
	fmt.Fprintf(&b, "Dietary Restrictions: %s\n", joinOrNone(profile.DietaryRestrictions))
	fmt.Fprintf(&b, "Owner Preferences: %s\n", formatPreferences(prefs))

	recent := recentHistory(history, historyLimit)
	if len(recent) == 0 {
		b.WriteString("Recent Meals: none\n")
	} else {
		b.WriteString("Recent Meals (most recent first):\n")

		for _, entry := range recent {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Date.Format("2006-01-02"), entry.RecipeID)
		}
	}

	return b.String()
}

// buildAssistantPrompt frames a free-form owner question for the
// text-generation capability.
func buildAssistantPrompt(question string) string {
	return "You are an assistant for a dog food recipe app. Answer the following question: " + question
}

// buildProfileText serializes preferences and meal history into the text a
// user embedding is generated from. Deterministic so unchanged profiles hit
// the embedding cache instead of the API.
func buildProfileText(prefs models.Preferences, history []models.MealHistoryEntry) string {
	var b strings.Builder

	b.WriteString(formatPreferences(prefs))
	b.WriteString("\nmeal history:")

	for _, entry := range recentHistory(history, 0) {
		fmt.Fprintf(&b, " %s=%s", entry.Date.Format("2006-01-02"), entry.RecipeID)
	}

	return b.String()
}
