// Package hitcount aggregates fingerprint records into per-URL visit counts.
//
// A "hit" is a distinct session, not a raw request: a session that loads the
// same page fifty times counts once. The counter is built to be cheap enough
// for synchronous use during page rendering; its storage contract batches
// lookups, creations, and the grouped aggregate so that the total round-trip
// count stays constant whether one URL or a thousand are queried.
//
// URLs that were never observed get a registry entry (so later ingestion
// reuses it) but are omitted from results instead of being reported as zero.
package hitcount
