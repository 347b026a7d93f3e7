// Package pg provides PostgreSQL connection management for the fingerprint
// module: pool creation with startup retries, goose-based schema migrations
// over an embedded filesystem, health checking, and classification helpers
// for the error patterns the storage layer cares about (duplicate keys,
// foreign key violations, missing rows, closed transactions).
//
// Configuration is environment-driven through Config:
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//		return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, postgres.Migrations, cfg, logger); err != nil {
//		return err
//	}
//
// WithTx and TxFromContext let callers run a group of storage operations
// inside one transaction without threading pgx.Tx through every signature;
// the storage layer picks the transaction out of the context when present.
package pg
