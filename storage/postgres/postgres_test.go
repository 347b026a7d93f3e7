package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fingerprint/core/binding"
	"github.com/dmitrymomot/fingerprint/core/tracker"
	"github.com/dmitrymomot/fingerprint/integration/database/pg"
	"github.com/dmitrymomot/fingerprint/storage/postgres"
)

// newStorage connects to the database named by TEST_DATABASE_URL and applies
// migrations. Tests are skipped when the variable is unset so the suite stays
// runnable without infrastructure.
func newStorage(t *testing.T) *postgres.Storage {
	t.Helper()

	connURL := os.Getenv("TEST_DATABASE_URL")
	if connURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pg.Connect(ctx, pg.Config{
		ConnectionString: connURL,
		MaxOpenConns:     4,
		MaxIdleConns:     1,
		RetryAttempts:    3,
		RetryInterval:    time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, postgres.Migrations, pg.Config{}, nil))
	return postgres.New(pool)
}

// key returns a fresh session key so runs never collide on persisted rows.
func key() string {
	return uuid.NewString()
}

func TestStorage_Bindings(t *testing.T) {
	store := newStorage(t)
	ctx := context.Background()

	t.Run("get or create converges on one row", func(t *testing.T) {
		sessionKey := key()

		first, err := store.GetOrCreate(ctx, sessionKey)
		require.NoError(t, err)
		second, err := store.GetOrCreate(ctx, sessionKey)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.True(t, first.IsAnonymous())
	})

	t.Run("upsert overwrites user on the same row", func(t *testing.T) {
		sessionKey := key()

		anon, err := store.GetOrCreate(ctx, sessionKey)
		require.NoError(t, err)

		userID := uuid.New()
		bound, err := store.Upsert(ctx, sessionKey, userID)
		require.NoError(t, err)
		assert.Equal(t, anon.ID, bound.ID)
		assert.Equal(t, userID, bound.UserID)

		other := uuid.New()
		rebound, err := store.Upsert(ctx, sessionKey, other)
		require.NoError(t, err)
		assert.Equal(t, anon.ID, rebound.ID)
		assert.Equal(t, other, rebound.UserID)
	})

	t.Run("get reports missing binding", func(t *testing.T) {
		_, err := store.Get(ctx, key())
		require.ErrorIs(t, err, binding.ErrNotFound)
	})

	t.Run("recent bindings lists a user's sessions", func(t *testing.T) {
		userID := uuid.New()
		for n := 0; n < 3; n++ {
			_, err := store.Upsert(ctx, key(), userID)
			require.NoError(t, err)
		}

		got, err := store.RecentBindings(ctx, userID, 10)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestStorage_ConcurrentFirstWriters(t *testing.T) {
	store := newStorage(t)
	ctx := context.Background()

	t.Run("bindings racers adopt one row without errors", func(t *testing.T) {
		sessionKey := key()

		const racers = 16
		var wg sync.WaitGroup
		ids := make([]int64, racers)
		errs := make([]error, racers)

		for i := 0; i < racers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				b, err := store.GetOrCreate(ctx, sessionKey)
				ids[i], errs[i] = b.ID, err
			}()
		}
		wg.Wait()

		for i := 0; i < racers; i++ {
			require.NoError(t, errs[i], "a losing racer must adopt the winner's row, not fail")
			assert.Equal(t, ids[0], ids[i])
		}
	})

	t.Run("url racers adopt one row without errors", func(t *testing.T) {
		value := "/pg-test/" + key()

		const racers = 16
		var wg sync.WaitGroup
		ids := make([]int64, racers)
		errs := make([]error, racers)

		for i := 0; i < racers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				u, err := store.LookupOrCreate(ctx, value)
				ids[i], errs[i] = u.ID, err
			}()
		}
		wg.Wait()

		for i := 0; i < racers; i++ {
			require.NoError(t, errs[i], "a losing racer must adopt the winner's row, not fail")
			assert.Equal(t, ids[0], ids[i])
		}
	})

	t.Run("racing get or create never disturbs a bound user", func(t *testing.T) {
		sessionKey := key()
		userID := uuid.New()
		_, err := store.Upsert(ctx, sessionKey, userID)
		require.NoError(t, err)

		b, err := store.GetOrCreate(ctx, sessionKey)
		require.NoError(t, err)
		assert.Equal(t, userID, b.UserID)
	})
}

func TestStorage_URLRegistry(t *testing.T) {
	store := newStorage(t)
	ctx := context.Background()

	t.Run("lookup or create reuses rows", func(t *testing.T) {
		value := "/pg-test/" + key()

		first, err := store.LookupOrCreate(ctx, value)
		require.NoError(t, err)
		second, err := store.LookupOrCreate(ctx, value)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("ensure urls resolves a mixed batch", func(t *testing.T) {
		existing := "/pg-test/" + key()
		fresh := "/pg-test/" + key()

		u, err := store.LookupOrCreate(ctx, existing)
		require.NoError(t, err)

		ids, err := store.EnsureURLs(ctx, []string{existing, fresh})
		require.NoError(t, err)
		assert.Equal(t, u.ID, ids[existing])
		assert.NotZero(t, ids[fresh])
	})
}

func TestStorage_HitCounts(t *testing.T) {
	store := newStorage(t)
	ctx := context.Background()

	url := "/pg-test/" + key()
	u, err := store.LookupOrCreate(ctx, url)
	require.NoError(t, err)

	record := func(sessionKey string) {
		b, err := store.GetOrCreate(ctx, sessionKey)
		require.NoError(t, err)
		_, err = store.CreateRequestFingerprint(ctx, tracker.RequestFingerprint{
			SessionBindingID: b.ID,
			URLID:            u.ID,
			UserAgent:        "pg-test-agent",
		})
		require.NoError(t, err)
	}

	sessA := key()
	record(sessA)
	record(sessA)
	record(key())

	counts, err := store.CountDistinctSessions(ctx, []int64{u.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[u.ID], "repeat hits within a session must count once")
}

func TestStorage_ReportingReads(t *testing.T) {
	store := newStorage(t)
	ctx := context.Background()

	b, err := store.GetOrCreate(ctx, key())
	require.NoError(t, err)
	u, err := store.LookupOrCreate(ctx, "/pg-test/"+key())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := store.CreateBrowserFingerprint(ctx, tracker.BrowserFingerprint{
			SessionBindingID: b.ID,
			URLID:            u.ID,
			VisitorID:        "visitor-dup",
		})
		require.NoError(t, err)
		_, err = store.CreateRequestFingerprint(ctx, tracker.RequestFingerprint{
			SessionBindingID: b.ID,
			URLID:            u.ID,
			UserAgent:        fmt.Sprintf("agent-%d", i),
		})
		require.NoError(t, err)
	}

	visitors, err := store.DistinctVisitors(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, visitors, 1, "duplicate visitor ids collapse")

	agents, err := store.DistinctUserAgents(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, agents, 2)
}
