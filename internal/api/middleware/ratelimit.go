package middleware

import (
	"errors"
	"net/http"

	"github.com/pawplates/engine/internal/api/response"
	"github.com/pawplates/engine/internal/observability"
	"github.com/pawplates/engine/internal/pawerrors"
)

// Limiter is the slice of the fixed-window limiter the middleware needs.
type Limiter interface {
	TryAcquire(scope string) error
}

// RateLimit guards a mutating endpoint with the fixed-window limiter.
// The scope is action plus the user the request targets, so one user
// hammering their own meal plan can't starve everyone else. The attempted
// action is never performed on rejection. Rejections are counted per
// action when metrics is non-nil.
func RateLimit(limiter Limiter, action string, metrics observability.EngineMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := action
			if id := r.PathValue("id"); id != "" {
				scope = action + ":" + id
			}

			if err := limiter.TryAcquire(scope); err != nil {
				if errors.Is(err, pawerrors.ErrRateLimited) {
					if metrics != nil {
						metrics.RecordRateLimitRejection(r.Context(), action)
					}

					response.RespondTooManyRequests(w, "rate limit exceeded, try again later")
					return
				}

				response.RespondInternalServerError(w, "rate limiter failure")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
