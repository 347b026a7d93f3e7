// Package postgres is the durable backend of the fingerprint module,
// implementing the session binding, URL registry, fingerprint ledger, and
// aggregation store contracts on PostgreSQL via pgx.
//
// First-writer races are resolved in SQL rather than surfaced as errors:
// registry values and anonymous bindings use a single insert-or-select
// statement, authenticated binds use an upsert keyed by session key, and the
// aggregation engine's bulk ensure-URLs step runs lookup and creation in one
// transaction. The distinct-session counts come from a single grouped
// aggregate backed by the (url_id, session_binding_id) index.
//
// Schema migrations are embedded (see Migrations) and applied with
// pg.Migrate at startup.
package postgres
