// Package middleware provides net/http middleware that hooks the fingerprint
// pipeline into a host application's request handling.
//
//   - Fingerprint records a request fingerprint for every wrapped request.
//   - RememberUserSession binds the session to the authenticated user when
//     one is present on the request.
//
// Both are observers: ingestion and binding failures are logged and the
// wrapped handler always runs. The host supplies two small functions: a
// SessionKeyFunc (see pkg/sessionkey for a cookie-backed default) and a
// CurrentUserFunc exposing its authentication state.
//
//	mux := http.NewServeMux()
//	// ... routes ...
//
//	keys := sessionkey.NewProvider(sessionkey.Config{})
//	wrapped := middleware.Fingerprint(middleware.FingerprintConfig{
//		Tracker:     trk,
//		SessionKey:  keys.Get,
//		CurrentUser: currentUser,
//	})(mux)
package middleware
