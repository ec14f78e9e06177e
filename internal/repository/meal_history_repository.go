package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawplates/engine/internal/models"
)

// MealHistoryRepository handles data access for the meal_history table.
type MealHistoryRepository struct {
	db *pgxpool.Pool
}

// NewMealHistoryRepository creates a new meal history repository.
func NewMealHistoryRepository(db *pgxpool.Pool) *MealHistoryRepository {
	return &MealHistoryRepository{db: db}
}

// Add records that userID was served recipeID on date.
func (r *MealHistoryRepository) Add(ctx context.Context, userID, recipeID string, date time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO meal_history (user_id, recipe_id, ate_on)
		VALUES ($1, $2, $3)`,
		userID, recipeID, date,
	)
	if err != nil {
		return fmt.Errorf("meal history add: %w", err)
	}

	return nil
}

// ListRecent returns up to limit entries for userID, most recent first.
// A limit <= 0 means no limit; a literal zero would otherwise turn into
// LIMIT 0 and return nothing. The id tiebreak keeps same-day entries in
// reverse insertion order.
func (r *MealHistoryRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.MealHistoryEntry, error) {
	var rowCap any
	if limit > 0 {
		rowCap = limit
	}

	rows, err := r.db.Query(ctx, `
		SELECT ate_on, recipe_id FROM meal_history
		WHERE user_id = $1
		ORDER BY ate_on DESC, id DESC
		LIMIT $2`,
		userID, rowCap,
	)
	if err != nil {
		return nil, fmt.Errorf("meal history list recent: %w", err)
	}
	defer rows.Close()

	var entries []models.MealHistoryEntry

	for rows.Next() {
		var entry models.MealHistoryEntry
		if err := rows.Scan(&entry.Date, &entry.RecipeID); err != nil {
			return nil, fmt.Errorf("scan meal history entry: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meal history: %w", err)
	}

	return entries, nil
}
