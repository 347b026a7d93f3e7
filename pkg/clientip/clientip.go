package clientip

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders are checked in priority order: CDN-specific headers first,
// then the generic proxy headers.
var proxyHeaders = [...]string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP extracts the real client IP address from the request, looking through
// common proxy headers before falling back to RemoteAddr. Returned addresses
// are validated and normalized; if nothing valid is found the raw RemoteAddr
// host is returned as-is.
func GetIP(r *http.Request) string {
	for _, header := range proxyHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For may carry a chain "client, proxy1, proxy2";
		// the leftmost entry is the original client.
		if header == "X-Forwarded-For" {
			if idx := strings.IndexByte(value, ','); idx >= 0 {
				value = value[:idx]
			}
		}

		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := normalize(host); ip != "" {
		return ip
	}
	return host
}

// normalize validates a candidate IP string and returns its canonical form,
// or empty when the candidate is unusable. The unspecified address 0.0.0.0
// is rejected because it never identifies a real client.
func normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	// Some proxies forward "ip:port".
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}
	value = strings.Trim(value, "[]")

	ip := net.ParseIP(value)
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
