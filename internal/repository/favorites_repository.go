package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawplates/engine/internal/models"
)

// FavoritesRepository handles data access for the favorites table.
type FavoritesRepository struct {
	db *pgxpool.Pool
}

// NewFavoritesRepository creates a new favorites repository.
func NewFavoritesRepository(db *pgxpool.Pool) *FavoritesRepository {
	return &FavoritesRepository{db: db}
}

// Save records that userID favorited recipeID. Saving the same pair twice is
// a no-op (ON CONFLICT DO NOTHING).
func (r *FavoritesRepository) Save(ctx context.Context, userID, recipeID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO favorites (user_id, recipe_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, recipe_id) DO NOTHING`,
		userID, recipeID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("favorites save: %w", err)
	}

	return nil
}

// GetForUsers returns (userID, recipeID) pairs for the given users, ordered
// by the position of the user in userIDs and then by insertion order. The
// input order carries the similarity ranking, so it must survive the query.
// Users with no favorites simply contribute no rows.
func (r *FavoritesRepository) GetForUsers(ctx context.Context, userIDs []string) ([]models.Favorite, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT user_id, recipe_id FROM favorites
		WHERE user_id = ANY($1)
		ORDER BY array_position($1, user_id), id`,
		userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("favorites get for users: %w", err)
	}
	defer rows.Close()

	var results []models.Favorite

	for rows.Next() {
		var fav models.Favorite
		if err := rows.Scan(&fav.UserID, &fav.RecipeID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}

		results = append(results, fav)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}

	return results, nil
}
