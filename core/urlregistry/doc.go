// Package urlregistry deduplicates URL strings into stable identifiers.
//
// Every distinct URL observed by the fingerprinting pipeline is stored exactly
// once and referenced by id from fingerprint records. Creation is idempotent
// under concurrent callers: the store contract guarantees that two requests
// racing to register the same value converge on a single row.
//
// An optional read-through cache (see Cache) sits in front of the store. It is
// a best-effort accelerator, never the source of truth; when disabled or
// failing, Resolve falls back to the store.
//
// # Usage
//
//	registry := urlregistry.New(store,
//		urlregistry.WithCache(rediscache.New(client, cacheCfg)),
//		urlregistry.WithLogger(logger),
//	)
//
//	u, err := registry.Resolve(ctx, "https://example.com/pricing")
//	if err != nil {
//		return err
//	}
//	// u.ID is stable and usable as a foreign key.
package urlregistry
