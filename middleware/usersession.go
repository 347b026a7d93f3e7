package middleware

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fingerprint/core/binding"
)

// UserSessionConfig configures the authenticated session binding middleware.
type UserSessionConfig struct {
	// Bindings is the session binding table. Required.
	Bindings *binding.Table
	// SessionKey supplies the per-client session key. Required.
	SessionKey SessionKeyFunc
	// CurrentUser supplies the authenticated identity. Required.
	CurrentUser CurrentUserFunc
	// Skip defines a function to skip middleware execution for specific requests.
	Skip func(r *http.Request) bool
	// Logger for binding failures (default: discards output).
	Logger *slog.Logger
}

// RememberUserSession creates middleware that binds the current session key
// to the authenticated user whenever one is present on the request. Hosts
// whose session store does not emit persistence events wrap their
// authenticated routes with this instead; both paths converge on the same
// upsert, so mixing them is safe.
//
// Binding failures are logged and never block the wrapped handler.
func RememberUserSession(cfg UserSessionConfig) func(http.Handler) http.Handler {
	if cfg.Bindings == nil {
		panic("middleware: UserSessionConfig.Bindings is required")
	}
	if cfg.SessionKey == nil {
		panic("middleware: UserSessionConfig.SessionKey is required")
	}
	if cfg.CurrentUser == nil {
		panic("middleware: UserSessionConfig.CurrentUser is required")
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

			if userID, ok := cfg.CurrentUser(r); ok {
				sessionKey, err := cfg.SessionKey(w, r)
				if err != nil {
					logger.ErrorContext(r.Context(), "failed to resolve session key", "error", err)
				} else if _, err := cfg.Bindings.BindAuthenticated(r.Context(), sessionKey, userID); err != nil {
					logger.ErrorContext(r.Context(), "failed to bind user session",
						"error", err, "user_id", userID)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
