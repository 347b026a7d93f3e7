package tracker

import (
	"context"
	"time"
	"unicode/utf8"
)

// Declared maximum lengths, in characters, for variable-length fingerprint
// fields. Oversized values are truncated before storage, never rejected.
const (
	MaxUserAgentLen       = 255
	MaxAcceptLen          = 255
	MaxContentEncodingLen = 255
	MaxContentLanguageLen = 255
	MaxRefererLen         = 2047
	MaxCountryLen         = 16
	MaxVisitorIDLen       = 255
)

// RequestFingerprint is an immutable server-side observation of a single
// HTTP request. Optional fields (IP, headers) are empty when absent.
type RequestFingerprint struct {
	ID               int64
	SessionBindingID int64
	URLID            int64
	CreatedAt        time.Time

	IP              string
	UserAgent       string
	Accept          string
	ContentEncoding string
	ContentLanguage string
	Referer         string
	Country         string
}

// DisplayValue returns a short user-agent excerpt for list views.
func (f RequestFingerprint) DisplayValue() string {
	if utf8.RuneCountInString(f.UserAgent) <= 24 {
		return f.UserAgent
	}
	return string([]rune(f.UserAgent)[:24]) + "..."
}

// BrowserFingerprint is an immutable client-side observation: an opaque
// visitor identifier computed by in-page script, tied to the page it was
// collected on via the referer URL.
type BrowserFingerprint struct {
	ID               int64
	SessionBindingID int64
	URLID            int64
	CreatedAt        time.Time

	VisitorID string
}

// DisplayValue returns a short visitor id excerpt for list views.
func (f BrowserFingerprint) DisplayValue() string {
	if utf8.RuneCountInString(f.VisitorID) <= 8 {
		return f.VisitorID
	}
	return string([]rune(f.VisitorID)[:8])
}

// Store appends fingerprint records. Records reference existing session
// bindings and URL registry entries and are never mutated after creation.
type Store interface {
	CreateRequestFingerprint(ctx context.Context, f RequestFingerprint) (RequestFingerprint, error)
	CreateBrowserFingerprint(ctx context.Context, f BrowserFingerprint) (BrowserFingerprint, error)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
