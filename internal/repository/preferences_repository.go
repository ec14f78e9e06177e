package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/pawerrors"
)

// PreferencesRepository handles data access for the user_preferences table.
// One jsonb row per user holding the typed models.Preferences document.
type PreferencesRepository struct {
	db *pgxpool.Pool
}

// NewPreferencesRepository creates a new preferences repository.
func NewPreferencesRepository(db *pgxpool.Pool) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Put upserts the preferences document for userID.
func (r *PreferencesRepository) Put(ctx context.Context, userID string, prefs models.Preferences) error {
	doc, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("preferences marshal: %w", err)
	}

	now := time.Now()

	_, err = r.db.Exec(ctx, `
		INSERT INTO user_preferences (user_id, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET preferences = EXCLUDED.preferences, updated_at = $3`,
		userID, doc, now,
	)
	if err != nil {
		return fmt.Errorf("preferences put: %w", err)
	}

	return nil
}

// Get returns the preferences document for userID.
// Returns pawerrors.NotFoundError when the user has none.
func (r *PreferencesRepository) Get(ctx context.Context, userID string) (models.Preferences, error) {
	var doc []byte

	err := r.db.QueryRow(ctx,
		`SELECT preferences FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Preferences{}, pawerrors.NewNotFoundError("preferences", "no preferences stored for user "+userID)
		}

		return models.Preferences{}, fmt.Errorf("preferences get: %w", err)
	}

	var prefs models.Preferences
	if err := json.Unmarshal(doc, &prefs); err != nil {
		return models.Preferences{}, fmt.Errorf("preferences unmarshal: %w", err)
	}

	return prefs, nil
}
