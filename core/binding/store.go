package binding

import (
	"context"

	"github.com/google/uuid"
)

// Store persists session bindings. Implementations must keep at most one row
// per session key under concurrent access.
type Store interface {
	// Upsert creates the binding for sessionKey or overwrites its user.
	// Repeated calls with the same arguments are no-ops in effect.
	Upsert(ctx context.Context, sessionKey string, userID uuid.UUID) (Binding, error)

	// GetOrCreate returns the existing binding for sessionKey or creates an
	// anonymous one. It never alters the user of an existing binding.
	GetOrCreate(ctx context.Context, sessionKey string) (Binding, error)

	// Get returns the binding for sessionKey or ErrNotFound.
	Get(ctx context.Context, sessionKey string) (Binding, error)
}
