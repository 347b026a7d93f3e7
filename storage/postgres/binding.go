package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fingerprint/core/binding"
	"github.com/dmitrymomot/fingerprint/integration/database/pg"
)

// Upsert implements binding.Store. The session key is the durable identity:
// a conflicting insert overwrites the bound user instead of adding a row, so
// concurrent first-writers and repeated binds converge on one row per key.
func (s *Storage) Upsert(ctx context.Context, sessionKey string, userID uuid.UUID) (binding.Binding, error) {
	var uid *uuid.UUID
	if userID != uuid.Nil {
		uid = &userID
	}

	row := s.db(ctx).QueryRow(ctx, `
		INSERT INTO session_bindings (session_key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_key) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, session_key, user_id, created_at`,
		sessionKey, uid)

	return scanBinding(row)
}

// GetOrCreate implements binding.Store. The conflict update deliberately
// rewrites session_key to itself instead of touching user_id, so an existing
// bound user survives; it also guarantees the statement returns a row even
// when a concurrent first-writer commits mid-flight, where DO NOTHING plus a
// snapshot-bound select would scan nothing and surface the race as an error.
func (s *Storage) GetOrCreate(ctx context.Context, sessionKey string) (binding.Binding, error) {
	row := s.db(ctx).QueryRow(ctx, `
		INSERT INTO session_bindings (session_key)
		VALUES ($1)
		ON CONFLICT (session_key) DO UPDATE SET session_key = EXCLUDED.session_key
		RETURNING id, session_key, user_id, created_at`,
		sessionKey)

	return scanBinding(row)
}

// Get implements binding.Store.
func (s *Storage) Get(ctx context.Context, sessionKey string) (binding.Binding, error) {
	row := s.db(ctx).QueryRow(ctx, `
		SELECT id, session_key, user_id, created_at
		FROM session_bindings
		WHERE session_key = $1`,
		sessionKey)

	b, err := scanBinding(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return binding.Binding{}, binding.ErrNotFound
		}
		return binding.Binding{}, err
	}
	return b, nil
}

// RecentBindings returns the newest bindings for a user, most recent first.
func (s *Storage) RecentBindings(ctx context.Context, userID uuid.UUID, limit int) ([]binding.Binding, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, session_key, user_id, created_at
		FROM session_bindings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []binding.Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (binding.Binding, error) {
	var (
		b   binding.Binding
		uid *uuid.UUID
	)
	if err := row.Scan(&b.ID, &b.SessionKey, &uid, &b.CreatedAt); err != nil {
		return binding.Binding{}, err
	}
	if uid != nil {
		b.UserID = *uid
	}
	return b, nil
}
