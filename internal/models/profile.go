package models

import "time"

// DogProfile is an immutable snapshot of the dog a recommendation is for.
// Owned by the caller; this engine never persists it.
type DogProfile struct {
	Age                 int      `json:"age"`
	Weight              float64  `json:"weight"` // kilograms
	Breed               string   `json:"breed"`
	ActivityLevel       string   `json:"activity_level"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}

// Preferences holds the owner's recipe preferences with enumerated,
// versioned keys known at build time, so prompt assembly stays
// deterministic and testable. New keys are added here, not as an
// open-ended map.
type Preferences struct {
	PreferredProteins  []string `json:"preferred_proteins"`
	AvoidedIngredients []string `json:"avoided_ingredients"`
	CookingStyle       string   `json:"cooking_style"` // raw, cooked, mixed
	MealsPerDay        int      `json:"meals_per_day"`
	BudgetLevel        string   `json:"budget_level"` // low, medium, high
}

// MealHistoryEntry is one served meal. Read-only input to the
// recommendation flow; most-recent-first ordering matters.
type MealHistoryEntry struct {
	Date     time.Time `json:"date"`
	RecipeID string    `json:"recipe_id"`
}

// Favorite links a user to a recipe they favorited.
type Favorite struct {
	UserID   string `json:"user_id"`
	RecipeID string `json:"recipe_id"`
}
