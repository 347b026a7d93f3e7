package urlregistry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"unicode/utf8"
)

// MaxValueLen is the registry's declared maximum URL length in characters.
// Every entry point that resolves a URL (request URL, referer, aggregation
// lookups) truncates against this single limit.
const MaxValueLen = 2047

// URL is a deduplicated registry entry. ID is stable for the lifetime of the
// store and is used as a foreign key by fingerprint records.
type URL struct {
	ID    int64
	Value string
}

// Store persists registry entries. LookupOrCreate must guarantee exactly one
// row per value even under concurrent first-writers: a losing racer adopts
// the winner's row instead of failing.
type Store interface {
	LookupOrCreate(ctx context.Context, value string) (URL, error)
}

// Cache is an optional read-through accelerator keyed by the exact URL value.
// Get returns ErrCacheMiss when the value is not cached. Implementations are
// best-effort: the registry falls back to the store on any cache failure.
type Cache interface {
	Get(ctx context.Context, value string) (URL, error)
	Set(ctx context.Context, u URL) error
}

// Registry deduplicates URL strings into stable identifiers.
type Registry struct {
	store  Store
	cache  Cache
	logger *slog.Logger
}

// Option configures the registry.
type Option func(*Registry)

// WithCache enables the read-through cache. Without this option every
// Resolve call goes straight to the store.
func WithCache(c Cache) Option {
	return func(r *Registry) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a registry backed by store. Caching is disabled unless
// WithCache is provided.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		cache:  nopCache{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the registry entry for value, creating it on first
// observation. The value is truncated to MaxValueLen before lookup so that
// all callers converge on the same entry for oversized URLs.
//
// The cache is never the source of truth: a miss, a disabled cache, or a
// cache error all fall through to the store.
func (r *Registry) Resolve(ctx context.Context, value string) (URL, error) {
	value = Truncate(value)

	u, err := r.cache.Get(ctx, value)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.WarnContext(ctx, "url cache read failed", "error", err)
	}

	u, err = r.store.LookupOrCreate(ctx, value)
	if err != nil {
		return URL{}, err
	}

	if err := r.cache.Set(ctx, u); err != nil {
		r.logger.WarnContext(ctx, "url cache write failed", "error", err)
	}

	return u, nil
}

// Truncate cuts value to MaxValueLen characters, preserving rune boundaries.
func Truncate(value string) string {
	if len(value) <= MaxValueLen {
		return value
	}
	if utf8.RuneCountInString(value) <= MaxValueLen {
		return value
	}
	return string([]rune(value)[:MaxValueLen])
}

// nopCache is the disabled-cache strategy: every Get misses, every Set is
// dropped.
type nopCache struct{}

func (nopCache) Get(ctx context.Context, value string) (URL, error) { return URL{}, ErrCacheMiss }
func (nopCache) Set(ctx context.Context, u URL) error               { return nil }
