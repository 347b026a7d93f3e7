// Package handler provides the host-facing fingerprint page: a single
// endpoint that captures a server-side request fingerprint on GET, serves
// the client-side fingerprinting script, accepts the visitor id beacon on
// POST, and then redirects the visitor to an allow-listed destination.
//
// Mount it wherever the host wants to funnel visitors through
// fingerprinting:
//
//	page, err := handler.NewPage(handler.PageConfig{
//		Tracker:    trk,
//		SessionKey: keys.Get,
//	})
//	if err != nil {
//		return err
//	}
//	mux.Handle("/fingerprint", page)
//
// A request to /fingerprint?next=/pricing fingerprints the visitor and then
// sends them on to /pricing. Only relative paths and hosts listed in
// PageConfig.AllowedHosts are accepted as redirect targets; anything else
// gets a 403 before the page renders.
package handler
