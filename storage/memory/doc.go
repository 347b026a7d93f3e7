// Package memory provides an in-memory implementation of the fingerprint
// store contracts for tests and development. All operations are safe for
// concurrent use; nothing is persisted.
package memory
