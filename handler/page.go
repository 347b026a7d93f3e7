package handler

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fingerprint/core/tracker"
	"github.com/dmitrymomot/fingerprint/middleware"
)

//go:embed fingerprint.html
var pageFS embed.FS

// DefaultRedirectIn is the delay before the fingerprint page redirects the
// visitor onward.
const DefaultRedirectIn = 3 * time.Second

// PageConfig configures the fingerprint page handler.
type PageConfig struct {
	// Tracker ingests the fingerprint records. Required.
	Tracker *tracker.Tracker
	// SessionKey supplies the per-client session key. Required.
	SessionKey middleware.SessionKeyFunc
	// CurrentUser supplies the authenticated identity; nil treats every
	// visitor as anonymous.
	CurrentUser middleware.CurrentUserFunc
	// AllowedHosts lists hosts the page may redirect to besides relative
	// paths. Empty allows relative redirects only.
	AllowedHosts []string
	// RedirectIn is the delay before redirecting (default: 3s).
	RedirectIn time.Duration
	// Logger for ingestion failures (default: discards output).
	Logger *slog.Logger
}

// Page is the multi-purpose fingerprinting endpoint.
//
// GET serves a page that fingerprints the visitor twice: server-side while
// handling the request, and client-side through embedded script that
// computes a visitor id and posts it back. After a short delay the page
// redirects to the `next` query parameter, which must be a relative path or
// an allow-listed host; anything else is rejected before rendering.
//
// POST is the beacon target: it expects an `id` form value carrying the
// visitor id and records a browser fingerprint against the page the script
// was embedded on (the request's referer).
type Page struct {
	cfg          PageConfig
	allowedHosts map[string]struct{}
	tmpl         *template.Template
	logger       *slog.Logger
}

// NewPage creates the page handler.
func NewPage(cfg PageConfig) (*Page, error) {
	if cfg.Tracker == nil {
		return nil, errors.New("handler: PageConfig.Tracker is required")
	}
	if cfg.SessionKey == nil {
		return nil, errors.New("handler: PageConfig.SessionKey is required")
	}
	if cfg.RedirectIn <= 0 {
		cfg.RedirectIn = DefaultRedirectIn
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tmpl, err := template.ParseFS(pageFS, "fingerprint.html")
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedHosts))
	for _, host := range cfg.AllowedHosts {
		allowed[host] = struct{}{}
	}

	return &Page{
		cfg:          cfg,
		allowedHosts: allowed,
		tmpl:         tmpl,
		logger:       logger,
	}, nil
}

// ServeHTTP implements http.Handler.
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p.get(w, r)
	case http.MethodPost:
		p.post(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (p *Page) get(w http.ResponseWriter, r *http.Request) {
	redirectURL := r.URL.Query().Get("next")
	if redirectURL == "" {
		redirectURL = "/"
	}
	if !redirectAllowed(redirectURL, p.allowedHosts) {
		p.logger.WarnContext(r.Context(), "rejected redirect target", "next", redirectURL)
		http.Error(w, ErrDisallowedRedirect.Error(), http.StatusForbidden)
		return
	}

	sessionKey, err := p.cfg.SessionKey(w, r)
	if err != nil {
		p.logger.ErrorContext(r.Context(), "failed to resolve session key", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := uuid.Nil
	if p.cfg.CurrentUser != nil {
		if id, ok := p.cfg.CurrentUser(r); ok {
			userID = id
		}
	}

	// Server-side half of the fingerprint; failures must not break the page.
	if err := p.cfg.Tracker.RecordRequest(r.Context(), tracker.FromRequest(r, sessionKey, userID)); err != nil {
		p.logger.ErrorContext(r.Context(), "failed to record request fingerprint", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := p.tmpl.Execute(w, map[string]any{
		"RedirectURL":       redirectURL,
		"RedirectInSeconds": int(p.cfg.RedirectIn.Seconds()),
	}); err != nil {
		p.logger.ErrorContext(r.Context(), "failed to render fingerprint page", "error", err)
	}
}

func (p *Page) post(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form data", http.StatusBadRequest)
		return
	}

	visitorID := r.PostFormValue("id")

	sessionKey, err := p.cfg.SessionKey(w, r)
	if err != nil {
		p.logger.ErrorContext(r.Context(), "failed to resolve session key", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err = p.cfg.Tracker.RecordBrowserVisit(r.Context(), sessionKey, visitorID, r.Referer())
	switch {
	case errors.Is(err, tracker.ErrMissingVisitorID):
		http.Error(w, "missing visitor id", http.StatusBadRequest)
	case err != nil:
		p.logger.ErrorContext(r.Context(), "failed to record browser fingerprint", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}
