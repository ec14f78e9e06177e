package models

import "time"

// UserEmbedding represents one append-only embedding record for a user.
// Records are never mutated or deleted; the record with the greatest
// Sequence is the user's current embedding. Sequence is assigned by the
// store at write time and is the authoritative ordering key (wall-clock
// time is neither monotonic nor unique).
type UserEmbedding struct {
	UserID     string    `json:"user_id"`
	Vector     []float32 `json:"vector"`
	Sequence   int64     `json:"sequence"`
	InsertedAt time.Time `json:"inserted_at"`
}

// UserVector is a user's current embedding as returned by the snapshot
// listing the similarity engine scans.
type UserVector struct {
	UserID string    `json:"user_id"`
	Vector []float32 `json:"vector"`
}

// SimilarityResult is one scored candidate from a similarity query.
// Derived, never persisted; produced fresh per query.
type SimilarityResult struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}
