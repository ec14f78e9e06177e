package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/pawerrors"
)

// EmbeddingsRepository handles data access for the append-only user_embeddings log.
// Rows are inserted, never updated or deleted; the bigserial sequence column
// decides which record is current, not inserted_at (wall-clock time is not
// guaranteed monotonic or unique under concurrent writers).
type EmbeddingsRepository struct {
	db *pgxpool.Pool
}

// NewEmbeddingsRepository creates a new embeddings repository.
func NewEmbeddingsRepository(db *pgxpool.Pool) *EmbeddingsRepository {
	return &EmbeddingsRepository{db: db}
}

// Append inserts a new embedding record for userID and returns its assigned
// sequence number. Concurrent appends for the same user produce two records
// with distinct sequence numbers; the higher one wins on read.
func (r *EmbeddingsRepository) Append(ctx context.Context, userID string, embedding []float32) (int64, error) {
	vec := pgvector.NewVector(embedding)

	var sequence int64

	err := r.db.QueryRow(ctx, `
		INSERT INTO user_embeddings (user_id, embedding, inserted_at)
		VALUES ($1, $2, $3)
		RETURNING sequence`,
		userID, vec, time.Now(),
	).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("user embeddings append: %w", err)
	}

	return sequence, nil
}

// GetLatest returns the embedding with the highest sequence number for userID.
// Returns pawerrors.NotFoundError when the user has no records.
func (r *EmbeddingsRepository) GetLatest(ctx context.Context, userID string) ([]float32, error) {
	var vec pgvector.Vector

	err := r.db.QueryRow(ctx, `
		SELECT embedding FROM user_embeddings
		WHERE user_id = $1
		ORDER BY sequence DESC
		LIMIT 1`,
		userID,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pawerrors.NewNotFoundError("embedding", "no embedding stored for user "+userID)
		}

		return nil, fmt.Errorf("user embeddings get latest: %w", err)
	}

	return vec.Slice(), nil
}

// ListAllLatest returns every user's current (highest-sequence) vector as a
// snapshot taken at call time. Writes committing during enumeration may or
// may not be reflected; callers accept this weak consistency.
func (r *EmbeddingsRepository) ListAllLatest(ctx context.Context) ([]models.UserVector, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (user_id) user_id, embedding
		FROM user_embeddings
		ORDER BY user_id, sequence DESC`)
	if err != nil {
		return nil, fmt.Errorf("user embeddings list all latest: %w", err)
	}
	defer rows.Close()

	var results []models.UserVector

	for rows.Next() {
		var (
			userID string
			vec    pgvector.Vector
		)

		if err := rows.Scan(&userID, &vec); err != nil {
			return nil, fmt.Errorf("scan user embedding: %w", err)
		}

		results = append(results, models.UserVector{UserID: userID, Vector: vec.Slice()})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user embeddings: %w", err)
	}

	return results, nil
}
