package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fingerprint/core/urlregistry"
)

// Config holds URL cache settings, mapped from environment variables. An
// empty namespace disables the cache entirely (New returns nil, which the
// registry treats as "no cache").
type Config struct {
	Namespace string        `env:"FINGERPRINT_CACHE_NAMESPACE" envDefault:"fp:url"`
	TTL       time.Duration `env:"FINGERPRINT_CACHE_TTL" envDefault:"1h"`
}

// URLCache implements urlregistry.Cache on Redis. Keys are the namespaced
// URL values, cached payloads are the registry ids. Entries expire after the
// configured TTL (zero keeps them until evicted).
type URLCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New creates a URL cache. Returns a nil Cache when cfg.Namespace is empty
// or no client is provided, so callers can pass the result straight to
// urlregistry.WithCache and get the disabled-cache behavior.
func New(client redis.UniversalClient, cfg Config) urlregistry.Cache {
	if cfg.Namespace == "" || client == nil {
		return nil
	}
	return &URLCache{
		client: client,
		prefix: cfg.Namespace + ":",
		ttl:    cfg.TTL,
	}
}

// Get implements urlregistry.Cache.
func (c *URLCache) Get(ctx context.Context, value string) (urlregistry.URL, error) {
	raw, err := c.client.Get(ctx, c.prefix+value).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return urlregistry.URL{}, urlregistry.ErrCacheMiss
		}
		return urlregistry.URL{}, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// A corrupted entry behaves like a miss so the store refreshes it.
		return urlregistry.URL{}, fmt.Errorf("%w: corrupted cache entry: %w", urlregistry.ErrCacheMiss, err)
	}

	return urlregistry.URL{ID: id, Value: value}, nil
}

// Set implements urlregistry.Cache.
func (c *URLCache) Set(ctx context.Context, u urlregistry.URL) error {
	return c.client.Set(ctx, c.prefix+u.Value, strconv.FormatInt(u.ID, 10), c.ttl).Err()
}
