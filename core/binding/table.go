package binding

import (
	"context"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultUserMarkerKey is the payload key carrying the authenticated user id
// in persisted-session payloads.
const DefaultUserMarkerKey = "user_id"

// Table is the session binding table. It exposes the two idempotent binding
// triggers (authenticated request, persisted session) and the anonymous
// get-or-create path used during ingestion. Both triggers resolve through the
// same upsert-by-session-key store operation, so they can never produce two
// rows for one key.
type Table struct {
	store     Store
	markerKey string
	logger    *slog.Logger
}

// Option configures the table.
type Option func(*Table)

// WithUserMarkerKey overrides the payload key checked by
// BindFromPersistedSession (default: "user_id").
func WithUserMarkerKey(key string) Option {
	return func(t *Table) {
		if key != "" {
			t.markerKey = key
		}
	}
}

// WithLogger sets the logger used for diagnostic output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTable creates a binding table backed by store.
func NewTable(store Store, opts ...Option) *Table {
	t := &Table{
		store:     store,
		markerKey: DefaultUserMarkerKey,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BindAuthenticated upserts the binding for sessionKey, attaching userID.
// Any previously bound (possibly nil) user on that key is overwritten.
func (t *Table) BindAuthenticated(ctx context.Context, sessionKey string, userID uuid.UUID) (Binding, error) {
	if sessionKey == "" {
		return Binding{}, ErrEmptySessionKey
	}
	if userID == uuid.Nil {
		return Binding{}, ErrMissingUser
	}
	return t.store.Upsert(ctx, truncateKey(sessionKey), userID)
}

// BindFromPersistedSession reacts to the host session store persisting a
// session. If the decoded payload carries the authenticated-user marker, the
// binding is upserted exactly as in BindAuthenticated; otherwise nothing is
// written.
func (t *Table) BindFromPersistedSession(ctx context.Context, sessionKey string, payload map[string]any) error {
	if sessionKey == "" {
		return ErrEmptySessionKey
	}

	userID, ok := userIDFromPayload(payload[t.markerKey])
	if !ok {
		return nil
	}

	if _, err := t.store.Upsert(ctx, truncateKey(sessionKey), userID); err != nil {
		return err
	}

	t.logger.DebugContext(ctx, "session bound from persisted session",
		"session_key", truncateKey(sessionKey), "user_id", userID)
	return nil
}

// GetOrCreateAnonymous returns the binding for sessionKey, creating an
// anonymous one when none exists. An existing bound user is left untouched.
func (t *Table) GetOrCreateAnonymous(ctx context.Context, sessionKey string) (Binding, error) {
	if sessionKey == "" {
		return Binding{}, ErrEmptySessionKey
	}
	return t.store.GetOrCreate(ctx, truncateKey(sessionKey))
}

// Get returns the binding for sessionKey or ErrNotFound.
func (t *Table) Get(ctx context.Context, sessionKey string) (Binding, error) {
	if sessionKey == "" {
		return Binding{}, ErrEmptySessionKey
	}
	return t.store.Get(ctx, truncateKey(sessionKey))
}

// userIDFromPayload extracts a user id from a persisted-session payload
// value. Hosts store either a uuid.UUID or its string form.
func userIDFromPayload(v any) (uuid.UUID, bool) {
	switch id := v.(type) {
	case uuid.UUID:
		if id != uuid.Nil {
			return id, true
		}
	case string:
		if parsed, err := uuid.Parse(id); err == nil && parsed != uuid.Nil {
			return parsed, true
		}
	}
	return uuid.Nil, false
}

func truncateKey(key string) string {
	if len(key) <= MaxSessionKeyLen {
		return key
	}
	if utf8.RuneCountInString(key) <= MaxSessionKeyLen {
		return key
	}
	return string([]rune(key)[:MaxSessionKeyLen])
}
