// Package redis provides Redis connection management for the fingerprint
// module. Connect parses a redis:// URL, establishes a client, and verifies
// connectivity with retries so that application startup tolerates a cache
// that is still booting. Healthcheck returns a probe for readiness
// endpoints.
//
// The fingerprint pipeline uses Redis only as the optional URL registry
// cache (see storage/rediscache); a failed or absent Redis never blocks
// ingestion.
package redis
