package tracker_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fingerprint/core/binding"
	"github.com/dmitrymomot/fingerprint/core/tracker"
	"github.com/dmitrymomot/fingerprint/core/urlregistry"
	"github.com/dmitrymomot/fingerprint/storage/memory"
)

func newTracker(store *memory.Storage) *tracker.Tracker {
	return tracker.New(
		binding.NewTable(store),
		urlregistry.New(store),
		store,
	)
}

func TestTracker_RecordRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("records anonymous request", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)

		err := trk.RecordRequest(ctx, tracker.RequestInfo{
			SessionKey: "sess-1",
			URL:        "https://example.com/a",
			IP:         "203.0.113.7",
			UserAgent:  "Mozilla/5.0",
		})
		require.NoError(t, err)

		records := store.RequestFingerprints()
		require.Len(t, records, 1)
		assert.NotZero(t, records[0].SessionBindingID)
		assert.NotZero(t, records[0].URLID)
		assert.Equal(t, "203.0.113.7", records[0].IP)
		assert.Equal(t, "Mozilla/5.0", records[0].UserAgent)

		b, err := store.Get(ctx, "sess-1")
		require.NoError(t, err)
		assert.True(t, b.IsAnonymous())
	})

	t.Run("authenticated request binds user", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)
		userID := uuid.New()

		err := trk.RecordRequest(ctx, tracker.RequestInfo{
			SessionKey: "sess-2",
			UserID:     userID,
			URL:        "https://example.com/b",
		})
		require.NoError(t, err)

		b, err := store.Get(ctx, "sess-2")
		require.NoError(t, err)
		assert.Equal(t, userID, b.UserID)
	})

	t.Run("login on existing anonymous session keeps one binding", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)
		userID := uuid.New()

		require.NoError(t, trk.RecordRequest(ctx, tracker.RequestInfo{
			SessionKey: "sess-3",
			URL:        "https://example.com/c",
		}))
		require.NoError(t, trk.RecordRequest(ctx, tracker.RequestInfo{
			SessionKey: "sess-3",
			UserID:     userID,
			URL:        "https://example.com/c",
		}))

		assert.Equal(t, 1, store.BindingCount())
		b, err := store.Get(ctx, "sess-3")
		require.NoError(t, err)
		assert.Equal(t, userID, b.UserID)

		records := store.RequestFingerprints()
		require.Len(t, records, 2)
		assert.Equal(t, records[0].SessionBindingID, records[1].SessionBindingID)
	})

	t.Run("truncates oversized header values", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)

		err := trk.RecordRequest(ctx, tracker.RequestInfo{
			SessionKey: "sess-4",
			URL:        "https://example.com/d",
			UserAgent:  strings.Repeat("u", 300),
			Accept:     strings.Repeat("a", 300),
			Referer:    strings.Repeat("r", 3000),
			Country:    strings.Repeat("c", 20),
		})
		require.NoError(t, err)

		records := store.RequestFingerprints()
		require.Len(t, records, 1)
		assert.Len(t, records[0].UserAgent, tracker.MaxUserAgentLen)
		assert.Len(t, records[0].Accept, tracker.MaxAcceptLen)
		assert.Len(t, records[0].Referer, tracker.MaxRefererLen)
		assert.Len(t, records[0].Country, tracker.MaxCountryLen)
	})

	t.Run("repeated URL reuses registry entry", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)

		for n := 0; n < 3; n++ {
			require.NoError(t, trk.RecordRequest(ctx, tracker.RequestInfo{
				SessionKey: "sess-5",
				URL:        "https://example.com/e",
			}))
		}

		assert.Equal(t, 1, store.URLCount())
	})
}

func TestTracker_RecordBrowserVisit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("records visitor id against referer URL", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)

		err := trk.RecordBrowserVisit(ctx, "sess-1", "visitor-abc", "https://example.com/landing")
		require.NoError(t, err)

		records := store.BrowserFingerprints()
		require.Len(t, records, 1)
		assert.Equal(t, "visitor-abc", records[0].VisitorID)

		u, err := store.LookupOrCreate(ctx, "https://example.com/landing")
		require.NoError(t, err)
		assert.Equal(t, u.ID, records[0].URLID)
	})

	t.Run("missing visitor id is a caller error", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)

		err := trk.RecordBrowserVisit(ctx, "sess-1", "", "https://example.com/landing")
		require.ErrorIs(t, err, tracker.ErrMissingVisitorID)
		assert.Empty(t, store.BrowserFingerprints())
	})

	t.Run("empty referer still records", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)

		err := trk.RecordBrowserVisit(ctx, "sess-1", "visitor-abc", "")
		require.NoError(t, err)
		require.Len(t, store.BrowserFingerprints(), 1)
	})

	t.Run("truncates oversized visitor id", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		trk := newTracker(store)

		err := trk.RecordBrowserVisit(ctx, "sess-1", strings.Repeat("v", 300), "")
		require.NoError(t, err)

		records := store.BrowserFingerprints()
		require.Len(t, records, 1)
		assert.Len(t, records[0].VisitorID, tracker.MaxVisitorIDLen)
	})
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("extracts headers and builds absolute URL", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "https://example.com/page?q=1", nil)
		r.Header.Set("User-Agent", "TestAgent/1.0")
		r.Header.Set("Accept", "text/html")
		r.Header.Set("Content-Encoding", "gzip")
		r.Header.Set("Content-Language", "en-US")
		r.Header.Set("Referer", "https://example.com/prev")
		r.Header.Set("CF-IPCountry", "NL")
		r.Header.Set("X-Forwarded-For", "203.0.113.7")

		info := tracker.FromRequest(r, "sess-1", uuid.Nil)

		assert.Equal(t, "sess-1", info.SessionKey)
		assert.Equal(t, "https://example.com/page?q=1", info.URL)
		assert.Equal(t, "TestAgent/1.0", info.UserAgent)
		assert.Equal(t, "text/html", info.Accept)
		assert.Equal(t, "gzip", info.ContentEncoding)
		assert.Equal(t, "en-US", info.ContentLanguage)
		assert.Equal(t, "https://example.com/prev", info.Referer)
		assert.Equal(t, "NL", info.Country)
		assert.Equal(t, "203.0.113.7", info.IP)
	})

	t.Run("honors forwarded protocol", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "http://example.com/page", nil)
		r.Header.Set("X-Forwarded-Proto", "https")

		info := tracker.FromRequest(r, "sess-1", uuid.Nil)
		assert.Equal(t, "https://example.com/page", info.URL)
	})
}

func TestDisplayValues(t *testing.T) {
	t.Parallel()

	longUA := strings.Repeat("u", 40)
	assert.Equal(t, longUA[:24]+"...", tracker.RequestFingerprint{UserAgent: longUA}.DisplayValue())
	assert.Equal(t, "tiny", tracker.RequestFingerprint{UserAgent: "tiny"}.DisplayValue())

	assert.Equal(t, "abcd1234", tracker.BrowserFingerprint{VisitorID: "abcd1234efgh"}.DisplayValue())
	assert.Equal(t, "short", tracker.BrowserFingerprint{VisitorID: "short"}.DisplayValue())

	t.Run("multibyte values cut at rune boundaries", func(t *testing.T) {
		t.Parallel()

		ua := strings.Repeat("я", 30)
		got := tracker.RequestFingerprint{UserAgent: ua}.DisplayValue()
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("я", 24)+"...", got)

		visitor := strings.Repeat("日", 12)
		gotVisitor := tracker.BrowserFingerprint{VisitorID: visitor}.DisplayValue()
		assert.True(t, utf8.ValidString(gotVisitor))
		assert.Equal(t, strings.Repeat("日", 8), gotVisitor)
	})
}
