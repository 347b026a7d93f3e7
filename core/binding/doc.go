// Package binding maps opaque session keys to optionally authenticated users.
//
// Host session stores rarely record which user owns a session, so the
// fingerprinting pipeline keeps its own table. A binding is created lazily on
// the first observed request for a session, or reactively when the host
// persists a session that carries an authenticated-user marker. Two triggers,
// one upsert: BindAuthenticated and BindFromPersistedSession both resolve
// through the same upsert-by-session-key store operation, so a session key can
// never accumulate more than one row, and re-binding a key to a different user
// overwrites rather than duplicates.
//
// Bindings are never deleted by this package; cleanup cascades from session
// or user deletion in the host application.
package binding
