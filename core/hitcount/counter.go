package hitcount

import (
	"context"

	"github.com/dmitrymomot/fingerprint/core/urlregistry"
)

// Store is the aggregation engine's storage contract. Both operations are
// batched: the number of storage round-trips they perform must not depend on
// input size, because the counter runs on every page render in the worst
// case.
type Store interface {
	// EnsureURLs returns the registry id for every value, bulk-creating
	// missing entries. Lookup and creation happen inside one transaction so
	// concurrent readers never observe a partially created batch.
	EnsureURLs(ctx context.Context, values []string) (map[string]int64, error)

	// CountDistinctSessions returns, per URL id, the number of distinct
	// session bindings that produced at least one request fingerprint for
	// it. URL ids with no fingerprints are absent from the result.
	CountDistinctSessions(ctx context.Context, urlIDs []int64) (map[int64]int64, error)
}

// Counter answers "how many distinct sessions hit each of these URLs".
type Counter struct {
	store Store
}

// NewCounter creates a counter backed by store.
func NewCounter(store Store) *Counter {
	return &Counter{store: store}
}

// CountDistinctSessionsPerURL returns the distinct-session hit count for each
// requested URL. Duplicate inputs are collapsed, inputs are truncated to the
// registry's declared maximum so counts line up with what ingestion stored,
// and URLs that were never hit are absent from the result rather than
// reported as zero.
//
// The whole operation costs a fixed number of storage round-trips (one bulk
// lookup-or-create transaction plus one grouped aggregate) regardless of how
// many URLs are passed. Empty input returns an empty map without touching
// storage.
func (c *Counter) CountDistinctSessionsPerURL(ctx context.Context, urls []string) (map[string]int64, error) {
	values := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = urlregistry.Truncate(u)
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		values = append(values, u)
	}

	result := make(map[string]int64, len(values))
	if len(values) == 0 {
		return result, nil
	}

	ids, err := c.store.EnsureURLs(ctx, values)
	if err != nil {
		return nil, err
	}

	urlIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		urlIDs = append(urlIDs, id)
	}

	counts, err := c.store.CountDistinctSessions(ctx, urlIDs)
	if err != nil {
		return nil, err
	}

	for value, id := range ids {
		if n := counts[id]; n > 0 {
			result[value] = n
		}
	}
	return result, nil
}

// HitCount returns the distinct-session count for a single URL, zero when it
// was never hit. Convenience wrapper for hit-count display helpers.
func (c *Counter) HitCount(ctx context.Context, url string) (int64, error) {
	counts, err := c.CountDistinctSessionsPerURL(ctx, []string{url})
	if err != nil {
		return 0, err
	}
	return counts[urlregistry.Truncate(url)], nil
}
