// Package tracker records fingerprints of HTTP requests and browser visits.
//
// The package defines the two append-only ledger record kinds and the
// ingestion façade that constructs them from inbound request context:
//
//   - RequestFingerprint: server-side observation of one request (client IP
//     and a fixed set of header values), created by RecordRequest.
//   - BrowserFingerprint: client-side observation carrying an opaque
//     visitor identifier computed by in-page script, created by
//     RecordBrowserVisit.
//
// Every record references a session binding (core/binding) and a URL
// registry entry (core/urlregistry). Variable-length fields are silently
// truncated to their declared maximums; absent values are stored empty.
// Records are immutable once written.
package tracker
