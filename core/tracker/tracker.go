package tracker

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fingerprint/core/binding"
	"github.com/dmitrymomot/fingerprint/core/urlregistry"
	"github.com/dmitrymomot/fingerprint/pkg/clientip"
)

// RequestInfo carries everything the tracker needs to fingerprint one HTTP
// request. UserID is uuid.Nil when no authenticated identity is present.
type RequestInfo struct {
	SessionKey string
	UserID     uuid.UUID
	URL        string

	IP              string
	UserAgent       string
	Accept          string
	ContentEncoding string
	ContentLanguage string
	Referer         string
	Country         string
}

// FromRequest builds a RequestInfo from an inbound request, extracting the
// client IP through the proxy-header chain and reconstructing the absolute
// request URL from the Host header and TLS state.
func FromRequest(r *http.Request, sessionKey string, userID uuid.UUID) RequestInfo {
	return RequestInfo{
		SessionKey:      sessionKey,
		UserID:          userID,
		URL:             absoluteURL(r),
		IP:              clientip.GetIP(r),
		UserAgent:       r.Header.Get("User-Agent"),
		Accept:          r.Header.Get("Accept"),
		ContentEncoding: r.Header.Get("Content-Encoding"),
		ContentLanguage: r.Header.Get("Content-Language"),
		Referer:         r.Header.Get("Referer"),
		Country:         r.Header.Get("CF-IPCountry"),
	}
}

// Tracker is the ingestion façade: it turns request and browser-visit
// observations into immutable ledger records, resolving the session binding
// and URL registry entry on the way.
type Tracker struct {
	bindings *binding.Table
	urls     *urlregistry.Registry
	store    Store
	logger   *slog.Logger
}

// Option configures the tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a tracker writing to store, resolving sessions through
// bindings and URLs through urls.
func New(bindings *binding.Table, urls *urlregistry.Registry, store Store, opts ...Option) *Tracker {
	t := &Tracker{
		bindings: bindings,
		urls:     urls,
		store:    store,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordRequest appends a request fingerprint. When info carries an
// authenticated user the session binding is upserted with that user (the
// authenticated-request trigger); otherwise an anonymous binding is reused
// or created. Oversized field values are truncated, never rejected.
func (t *Tracker) RecordRequest(ctx context.Context, info RequestInfo) error {
	var (
		b   binding.Binding
		err error
	)
	if info.UserID != uuid.Nil {
		b, err = t.bindings.BindAuthenticated(ctx, info.SessionKey, info.UserID)
	} else {
		b, err = t.bindings.GetOrCreateAnonymous(ctx, info.SessionKey)
	}
	if err != nil {
		return err
	}

	u, err := t.urls.Resolve(ctx, info.URL)
	if err != nil {
		return err
	}

	_, err = t.store.CreateRequestFingerprint(ctx, RequestFingerprint{
		SessionBindingID: b.ID,
		URLID:            u.ID,
		IP:               info.IP,
		UserAgent:        truncate(info.UserAgent, MaxUserAgentLen),
		Accept:           truncate(info.Accept, MaxAcceptLen),
		ContentEncoding:  truncate(info.ContentEncoding, MaxContentEncodingLen),
		ContentLanguage:  truncate(info.ContentLanguage, MaxContentLanguageLen),
		Referer:          truncate(info.Referer, MaxRefererLen),
		Country:          truncate(info.Country, MaxCountryLen),
	})
	if err != nil {
		return err
	}

	t.logger.DebugContext(ctx, "request fingerprint recorded",
		"session_binding_id", b.ID, "url_id", u.ID)
	return nil
}

// RecordBrowserVisit appends a browser fingerprint for sessionKey. The URL
// attached to the record is the referring page the beacon was embedded on,
// not the beacon endpoint itself. A missing visitorID is a caller error
// (ErrMissingVisitorID); no authentication fact is available on this path,
// so the binding is always resolved anonymously.
func (t *Tracker) RecordBrowserVisit(ctx context.Context, sessionKey, visitorID, refererURL string) error {
	if visitorID == "" {
		return ErrMissingVisitorID
	}

	b, err := t.bindings.GetOrCreateAnonymous(ctx, sessionKey)
	if err != nil {
		return err
	}

	u, err := t.urls.Resolve(ctx, refererURL)
	if err != nil {
		return err
	}

	_, err = t.store.CreateBrowserFingerprint(ctx, BrowserFingerprint{
		SessionBindingID: b.ID,
		URLID:            u.ID,
		VisitorID:        truncate(visitorID, MaxVisitorIDLen),
	})
	if err != nil {
		return err
	}

	t.logger.DebugContext(ctx, "browser fingerprint recorded",
		"session_binding_id", b.ID, "url_id", u.ID)
	return nil
}

// absoluteURL reconstructs the full request URL the way the client addressed
// it, preferring the proxy-forwarded protocol when present.
func absoluteURL(r *http.Request) string {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
