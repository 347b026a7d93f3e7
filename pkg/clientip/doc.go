// Package clientip extracts real client IP addresses from HTTP requests.
//
// Requests reaching an application behind proxies, load balancers, or CDNs
// carry the original client address in forwarding headers rather than in
// RemoteAddr. The package checks headers in priority order:
//
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry of the chain)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// All candidates are validated with net.ParseIP and normalized; malformed
// headers are skipped silently and the unspecified address 0.0.0.0 is never
// returned. GetIP never fails: when no valid address can be determined it
// falls back to the raw RemoteAddr host.
package clientip
