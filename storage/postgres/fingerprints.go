package postgres

import (
	"context"

	"github.com/dmitrymomot/fingerprint/core/tracker"
)

// CreateRequestFingerprint implements tracker.Store. Each insert is a single
// atomic write; within a session, records land in request-arrival order.
func (s *Storage) CreateRequestFingerprint(ctx context.Context, f tracker.RequestFingerprint) (tracker.RequestFingerprint, error) {
	var ip *string
	if f.IP != "" {
		ip = &f.IP
	}

	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO request_fingerprints
			(session_binding_id, url_id, ip, user_agent, accept, content_encoding, content_language, referer, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		f.SessionBindingID, f.URLID, ip, f.UserAgent, f.Accept,
		f.ContentEncoding, f.ContentLanguage, f.Referer, f.Country,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return tracker.RequestFingerprint{}, err
	}
	return f, nil
}

// CreateBrowserFingerprint implements tracker.Store.
func (s *Storage) CreateBrowserFingerprint(ctx context.Context, f tracker.BrowserFingerprint) (tracker.BrowserFingerprint, error) {
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO browser_fingerprints (session_binding_id, url_id, visitor_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		f.SessionBindingID, f.URLID, f.VisitorID,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return tracker.BrowserFingerprint{}, err
	}
	return f, nil
}

// DistinctVisitors returns the latest browser fingerprint per distinct
// visitor id for a session binding. Reporting read for admin-style lists.
func (s *Storage) DistinctVisitors(ctx context.Context, sessionBindingID int64) ([]tracker.BrowserFingerprint, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT DISTINCT ON (visitor_id) id, session_binding_id, url_id, created_at, visitor_id
		FROM browser_fingerprints
		WHERE session_binding_id = $1
		ORDER BY visitor_id, created_at DESC`,
		sessionBindingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tracker.BrowserFingerprint
	for rows.Next() {
		var f tracker.BrowserFingerprint
		if err := rows.Scan(&f.ID, &f.SessionBindingID, &f.URLID, &f.CreatedAt, &f.VisitorID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DistinctUserAgents returns the latest request fingerprint per distinct
// user agent for a session binding. Same grouping idea as DistinctVisitors.
func (s *Storage) DistinctUserAgents(ctx context.Context, sessionBindingID int64) ([]tracker.RequestFingerprint, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT DISTINCT ON (user_agent)
			id, session_binding_id, url_id, created_at,
			COALESCE(ip, ''), user_agent, accept, content_encoding, content_language, referer, country
		FROM request_fingerprints
		WHERE session_binding_id = $1
		ORDER BY user_agent, created_at DESC`,
		sessionBindingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tracker.RequestFingerprint
	for rows.Next() {
		var f tracker.RequestFingerprint
		if err := rows.Scan(&f.ID, &f.SessionBindingID, &f.URLID, &f.CreatedAt,
			&f.IP, &f.UserAgent, &f.Accept, &f.ContentEncoding, &f.ContentLanguage, &f.Referer, &f.Country); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
