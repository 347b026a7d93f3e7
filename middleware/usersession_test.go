package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fingerprint/core/binding"
	"github.com/dmitrymomot/fingerprint/middleware"
	"github.com/dmitrymomot/fingerprint/storage/memory"
)

func TestRememberUserSession(t *testing.T) {
	t.Parallel()

	t.Run("binds authenticated user to session", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		userID := uuid.New()
		mw := middleware.RememberUserSession(middleware.UserSessionConfig{
			Bindings:   binding.NewTable(store),
			SessionKey: staticKey("sess-1"),
			CurrentUser: func(*http.Request) (uuid.UUID, bool) {
				return userID, true
			},
		})

		w := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/account", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		b, err := store.Get(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, userID, b.UserID)
	})

	t.Run("anonymous request creates no binding", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		mw := middleware.RememberUserSession(middleware.UserSessionConfig{
			Bindings:   binding.NewTable(store),
			SessionKey: staticKey("sess-2"),
			CurrentUser: func(*http.Request) (uuid.UUID, bool) {
				return uuid.Nil, false
			},
		})

		w := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/account", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, store.BindingCount())
	})

	t.Run("rebinding overwrites previous user", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		first := uuid.New()
		second := uuid.New()
		current := first
		mw := middleware.RememberUserSession(middleware.UserSessionConfig{
			Bindings:   binding.NewTable(store),
			SessionKey: staticKey("sess-3"),
			CurrentUser: func(*http.Request) (uuid.UUID, bool) {
				return current, true
			},
		})
		h := mw(okHandler())

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/a", nil))
		current = second
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/b", nil))

		assert.Equal(t, 1, store.BindingCount())
		b, err := store.Get(context.Background(), "sess-3")
		require.NoError(t, err)
		assert.Equal(t, second, b.UserID)
	})

	t.Run("skip bypasses binding", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		mw := middleware.RememberUserSession(middleware.UserSessionConfig{
			Bindings:   binding.NewTable(store),
			SessionKey: staticKey("sess-4"),
			CurrentUser: func(*http.Request) (uuid.UUID, bool) {
				return uuid.New(), true
			},
			Skip: func(r *http.Request) bool { return true },
		})

		w := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/account", nil))

		assert.Zero(t, store.BindingCount())
	})

	t.Run("panics without required dependencies", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			middleware.RememberUserSession(middleware.UserSessionConfig{})
		})
	})
}
