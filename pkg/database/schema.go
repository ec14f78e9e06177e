package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables the engine needs if they do not exist.
// The embedding column dimension is fixed per deployment; changing it
// requires a manual migration of stored vectors.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, dimensions int) error {
	ddl := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS user_embeddings (
  sequence    bigserial PRIMARY KEY,
  user_id     text NOT NULL,
  embedding   vector(%d) NOT NULL,
  inserted_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS user_embeddings_user_id_sequence_idx
  ON user_embeddings (user_id, sequence DESC);

CREATE TABLE IF NOT EXISTS favorites (
  id         bigserial PRIMARY KEY,
  user_id    text NOT NULL,
  recipe_id  text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT now(),
  UNIQUE (user_id, recipe_id)
);

CREATE TABLE IF NOT EXISTS meal_history (
  id        bigserial PRIMARY KEY,
  user_id   text NOT NULL,
  recipe_id text NOT NULL,
  ate_on    timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS meal_history_user_id_ate_on_idx
  ON meal_history (user_id, ate_on DESC);

CREATE TABLE IF NOT EXISTS user_preferences (
  user_id     text PRIMARY KEY,
  preferences jsonb NOT NULL,
  created_at  timestamptz NOT NULL DEFAULT now(),
  updated_at  timestamptz NOT NULL DEFAULT now()
);
`, dimensions)

	if _, err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}
