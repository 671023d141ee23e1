package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ensureTimeout bounds the background timer-arming work so an abandoned
// preference read cannot pile up goroutines.
const ensureTimeout = 10 * time.Second

// Ensurer arms a midnight rollover timer for a user unless one is already
// armed. Satisfied by the rollover scheduler.
type Ensurer interface {
	Ensure(ctx context.Context, userID uuid.UUID) error
}

// ActivityMiddleware watches authenticated traffic and makes sure every
// active user has a midnight timer armed. Users appear here on their first
// request after a server restart, before any preference write would
// otherwise introduce them to the scheduler.
type ActivityMiddleware struct {
	ensurer Ensurer
	logger  *slog.Logger
}

// NewActivityMiddleware creates a new ActivityMiddleware.
func NewActivityMiddleware(ensurer Ensurer, log *slog.Logger) *ActivityMiddleware {
	if ensurer == nil {
		panic("ensurer cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ActivityMiddleware{
		ensurer: ensurer,
		logger:  log.With(slog.String("component", "activity_middleware")),
	}
}

// Track arms the requesting user's timer off the request path. The response
// never waits on the scheduler; a failed arm is logged and retried on the
// user's next request.
func (m *ActivityMiddleware) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := GetUserID(r); ok && userID != uuid.Nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), ensureTimeout)
				defer cancel()
				if err := m.ensurer.Ensure(ctx, userID); err != nil {
					m.logger.Warn("failed to ensure rollover timer",
						slog.String("error", err.Error()),
						slog.String("user_id", userID.String()))
				}
			}()
		}
		next.ServeHTTP(w, r)
	})
}
