package middleware

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fingerprint/core/tracker"
)

// SessionKeyFunc returns the stable per-client session key, creating one
// lazily when absent. Implementations may set a cookie on the response.
type SessionKeyFunc func(w http.ResponseWriter, r *http.Request) (string, error)

// CurrentUserFunc reports the authenticated identity on a request, if any.
type CurrentUserFunc func(r *http.Request) (uuid.UUID, bool)

// FingerprintConfig configures the request fingerprinting middleware.
type FingerprintConfig struct {
	// Tracker ingests the fingerprint records. Required.
	Tracker *tracker.Tracker
	// SessionKey supplies the per-client session key. Required.
	SessionKey SessionKeyFunc
	// CurrentUser supplies the authenticated identity; nil treats every
	// request as anonymous.
	CurrentUser CurrentUserFunc
	// Skip defines a function to skip middleware execution for specific requests.
	Skip func(r *http.Request) bool
	// Logger for ingestion failures (default: discards output).
	Logger *slog.Logger
}

// Fingerprint creates middleware that records a request fingerprint for
// every wrapped request. Ingestion failures are logged and never block the
// wrapped handler: fingerprinting is an observer, not a gate.
func Fingerprint(cfg FingerprintConfig) func(http.Handler) http.Handler {
	if cfg.Tracker == nil {
		panic("middleware: FingerprintConfig.Tracker is required")
	}
	if cfg.SessionKey == nil {
		panic("middleware: FingerprintConfig.SessionKey is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			sessionKey, err := cfg.SessionKey(w, r)
			if err != nil {
				logger.ErrorContext(r.Context(), "failed to resolve session key", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			userID := uuid.Nil
			if cfg.CurrentUser != nil {
				if id, ok := cfg.CurrentUser(r); ok {
					userID = id
				}
			}

			info := tracker.FromRequest(r, sessionKey, userID)
			if err := cfg.Tracker.RecordRequest(r.Context(), info); err != nil {
				logger.ErrorContext(r.Context(), "failed to record request fingerprint",
					"error", err, "url", info.URL)
			}

			next.ServeHTTP(w, r)
		})
	}
}
