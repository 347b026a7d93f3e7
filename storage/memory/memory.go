package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fingerprint/core/binding"
	"github.com/dmitrymomot/fingerprint/core/tracker"
	"github.com/dmitrymomot/fingerprint/core/urlregistry"
)

// Storage is a mutex-guarded in-memory implementation of every store
// contract in the module: session bindings, URL registry, fingerprint ledger,
// and the aggregation reads. It backs tests and development setups; data does
// not survive a restart.
type Storage struct {
	mu sync.Mutex

	bindings map[string]binding.Binding
	urls     map[string]urlregistry.URL
	requests []tracker.RequestFingerprint
	browsers []tracker.BrowserFingerprint

	nextBindingID int64
	nextURLID     int64
	nextRequestID int64
	nextBrowserID int64
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{
		bindings: make(map[string]binding.Binding),
		urls:     make(map[string]urlregistry.URL),
	}
}

// Upsert implements binding.Store.
func (s *Storage) Upsert(ctx context.Context, sessionKey string, userID uuid.UUID) (binding.Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bindings[sessionKey]; ok {
		b.UserID = userID
		s.bindings[sessionKey] = b
		return b, nil
	}

	s.nextBindingID++
	b := binding.Binding{
		ID:         s.nextBindingID,
		SessionKey: sessionKey,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}
	s.bindings[sessionKey] = b
	return b, nil
}

// GetOrCreate implements binding.Store.
func (s *Storage) GetOrCreate(ctx context.Context, sessionKey string) (binding.Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bindings[sessionKey]; ok {
		return b, nil
	}

	s.nextBindingID++
	b := binding.Binding{
		ID:         s.nextBindingID,
		SessionKey: sessionKey,
		UserID:     uuid.Nil,
		CreatedAt:  time.Now(),
	}
	s.bindings[sessionKey] = b
	return b, nil
}

// Get implements binding.Store.
func (s *Storage) Get(ctx context.Context, sessionKey string) (binding.Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bindings[sessionKey]
	if !ok {
		return binding.Binding{}, binding.ErrNotFound
	}
	return b, nil
}

// LookupOrCreate implements urlregistry.Store.
func (s *Storage) LookupOrCreate(ctx context.Context, value string) (urlregistry.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupOrCreateLocked(value), nil
}

func (s *Storage) lookupOrCreateLocked(value string) urlregistry.URL {
	if u, ok := s.urls[value]; ok {
		return u
	}
	s.nextURLID++
	u := urlregistry.URL{ID: s.nextURLID, Value: value}
	s.urls[value] = u
	return u
}

// CreateRequestFingerprint implements tracker.Store.
func (s *Storage) CreateRequestFingerprint(ctx context.Context, f tracker.RequestFingerprint) (tracker.RequestFingerprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRequestID++
	f.ID = s.nextRequestID
	f.CreatedAt = time.Now()
	s.requests = append(s.requests, f)
	return f, nil
}

// CreateBrowserFingerprint implements tracker.Store.
func (s *Storage) CreateBrowserFingerprint(ctx context.Context, f tracker.BrowserFingerprint) (tracker.BrowserFingerprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBrowserID++
	f.ID = s.nextBrowserID
	f.CreatedAt = time.Now()
	s.browsers = append(s.browsers, f)
	return f, nil
}

// EnsureURLs implements hitcount.Store. The whole batch resolves under one
// lock acquisition, mirroring the single transaction of the SQL backend.
func (s *Storage) EnsureURLs(ctx context.Context, values []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]int64, len(values))
	for _, value := range values {
		ids[value] = s.lookupOrCreateLocked(value).ID
	}
	return ids, nil
}

// CountDistinctSessions implements hitcount.Store.
func (s *Storage) CountDistinctSessions(ctx context.Context, urlIDs []int64) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[int64]struct{}, len(urlIDs))
	for _, id := range urlIDs {
		wanted[id] = struct{}{}
	}

	sessions := make(map[int64]map[int64]struct{})
	for _, f := range s.requests {
		if _, ok := wanted[f.URLID]; !ok {
			continue
		}
		if sessions[f.URLID] == nil {
			sessions[f.URLID] = make(map[int64]struct{})
		}
		sessions[f.URLID][f.SessionBindingID] = struct{}{}
	}

	counts := make(map[int64]int64, len(sessions))
	for urlID, set := range sessions {
		counts[urlID] = int64(len(set))
	}
	return counts, nil
}

// RequestFingerprints returns a copy of all recorded request fingerprints in
// insertion order.
func (s *Storage) RequestFingerprints() []tracker.RequestFingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tracker.RequestFingerprint, len(s.requests))
	copy(out, s.requests)
	return out
}

// BrowserFingerprints returns a copy of all recorded browser fingerprints in
// insertion order.
func (s *Storage) BrowserFingerprints() []tracker.BrowserFingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tracker.BrowserFingerprint, len(s.browsers))
	copy(out, s.browsers)
	return out
}

// URLCount returns the number of distinct registry entries.
func (s *Storage) URLCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

// BindingCount returns the number of session binding rows.
func (s *Storage) BindingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bindings)
}
