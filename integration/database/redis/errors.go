package redis

import "errors"

// Sentinel errors for Redis connection management. Use errors.Is() to
// distinguish configuration mistakes from a cache that is merely unreachable;
// the fingerprint pipeline treats the latter as non-fatal.
var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)
