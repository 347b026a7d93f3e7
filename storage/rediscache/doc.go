// Package rediscache provides the Redis-backed read-through cache strategy
// for the URL registry. It maps namespaced URL values to registry ids with a
// configurable TTL.
//
// The cache is strictly best-effort: misses, corrupted entries, and Redis
// failures all surface as urlregistry.ErrCacheMiss or plain errors that the
// registry logs and falls through to durable storage. Setting an empty
// FINGERPRINT_CACHE_NAMESPACE disables caching.
package rediscache
