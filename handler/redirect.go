package handler

import (
	"net/url"
	"strings"
)

// redirectAllowed reports whether target is a safe redirect destination:
// a relative path, or an http(s) URL whose host is in allowedHosts. Scheme
// tricks (javascript:, data:), protocol-relative URLs to foreign hosts, and
// backslash obfuscation are all rejected.
func redirectAllowed(target string, allowedHosts map[string]struct{}) bool {
	if target == "" {
		return false
	}

	// Browsers treat backslashes as slashes; normalize before parsing so
	// "/\evil.com" cannot slip through as a relative path.
	target = strings.ReplaceAll(target, "\\", "/")

	u, err := url.Parse(target)
	if err != nil {
		return false
	}

	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Scheme != "" && u.Host == "" {
		return false
	}

	if u.Host == "" {
		return true
	}

	_, ok := allowedHosts[u.Host]
	return ok
}
