// Package sessionkey provides a cookie-backed session key provider for hosts
// that do not already issue one.
//
// The fingerprint pipeline only needs a stable opaque per-client string;
// applications with their own session mechanism should adapt it instead of
// using this package. Keys are 40-character base64url tokens generated from
// crypto/rand and issued lazily: the first Get on a keyless request sets the
// cookie on the response and mirrors it onto the request, so every consumer
// within that request sees the same key.
package sessionkey
