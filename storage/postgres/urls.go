package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/fingerprint/core/urlregistry"
)

// LookupOrCreate implements urlregistry.Store. The no-op conflict update
// makes the insert return the surviving row in every outcome, including a
// lost race against a concurrent first-writer whose commit is invisible to
// this statement's snapshot (DO NOTHING would scan zero rows there).
func (s *Storage) LookupOrCreate(ctx context.Context, value string) (urlregistry.URL, error) {
	var u urlregistry.URL
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO urls (value)
		VALUES ($1)
		ON CONFLICT (value) DO UPDATE SET value = EXCLUDED.value
		RETURNING id, value`,
		value).Scan(&u.ID, &u.Value)
	if err != nil {
		return urlregistry.URL{}, err
	}
	return u, nil
}

// EnsureURLs implements hitcount.Store. The lookup and the bulk create run
// inside one transaction so no reader ever observes a half-created batch,
// and the statement count stays fixed no matter how many values are passed.
func (s *Storage) EnsureURLs(ctx context.Context, values []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(values))
	if len(values) == 0 {
		return ids, nil
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, value FROM urls WHERE value = ANY($1)`, values)
		if err != nil {
			return err
		}
		if err := collectURLIDs(rows, ids); err != nil {
			return err
		}

		missing := make([]string, 0, len(values)-len(ids))
		for _, value := range values {
			if _, ok := ids[value]; !ok {
				missing = append(missing, value)
			}
		}
		if len(missing) == 0 {
			return nil
		}

		rows, err = tx.Query(ctx, `
			INSERT INTO urls (value)
			SELECT unnest($1::text[])
			ON CONFLICT (value) DO NOTHING
			RETURNING id, value`,
			missing)
		if err != nil {
			return err
		}
		if err := collectURLIDs(rows, ids); err != nil {
			return err
		}

		// A concurrent creator may have won some of the inserts; those rows
		// exist but were not returned above.
		raced := make([]string, 0)
		for _, value := range missing {
			if _, ok := ids[value]; !ok {
				raced = append(raced, value)
			}
		}
		if len(raced) == 0 {
			return nil
		}

		rows, err = tx.Query(ctx, `SELECT id, value FROM urls WHERE value = ANY($1)`, raced)
		if err != nil {
			return err
		}
		return collectURLIDs(rows, ids)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func collectURLIDs(rows pgx.Rows, ids map[string]int64) error {
	defer rows.Close()
	for rows.Next() {
		var (
			id    int64
			value string
		)
		if err := rows.Scan(&id, &value); err != nil {
			return err
		}
		ids[value] = id
	}
	return rows.Err()
}

// CountDistinctSessions implements hitcount.Store with a single grouped
// aggregate over the request ledger.
func (s *Storage) CountDistinctSessions(ctx context.Context, urlIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(urlIDs))
	if len(urlIDs) == 0 {
		return counts, nil
	}

	rows, err := s.db(ctx).Query(ctx, `
		SELECT url_id, COUNT(DISTINCT session_binding_id)
		FROM request_fingerprints
		WHERE url_id = ANY($1)
		GROUP BY url_id`,
		urlIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			urlID int64
			n     int64
		)
		if err := rows.Scan(&urlID, &n); err != nil {
			return nil, err
		}
		counts[urlID] = n
	}
	return counts, rows.Err()
}
