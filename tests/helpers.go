// Package tests provides integration test helpers and utilities.
package tests

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/pawplates/engine/pkg/database"
)

// testDimensions matches the deployment default so the suite can run
// against a database whose schema was created by the server.
const (
	testAPIKey     = "test-api-key-12345"
	testDimensions = 128
)

// axisVector returns a unit vector along the given axis.
func axisVector(axis int) []float32 {
	vec := make([]float32, testDimensions)
	vec[axis] = 1

	return vec
}

// requireDatabase connects to the database named by DATABASE_URL and makes
// sure the schema exists. Tests calling it are skipped when DATABASE_URL is
// unset so the suite stays green without a local Postgres.
func requireDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()

	db, err := database.NewPostgresPool(ctx, databaseURL, database.WithPgvector())
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(db.Close)

	require.NoError(t, database.EnsureSchema(ctx, db, testDimensions))

	return db
}

// cleanupUser removes every row the given test user created.
func cleanupUser(t *testing.T, db *pgxpool.Pool, userID string) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"user_embeddings", "favorites", "meal_history", "user_preferences"} {
		_, err := db.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID)
		require.NoError(t, err)
	}
}
