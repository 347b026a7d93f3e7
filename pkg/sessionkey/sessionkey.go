package sessionkey

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
)

// keyBytes yields a 40-character base64url key, matching the stored session
// key length limit.
const keyBytes = 30

// ErrKeyGeneration is returned when the random source fails.
var ErrKeyGeneration = errors.New("failed to generate session key")

// Config holds cookie settings for the session key provider.
type Config struct {
	CookieName string `env:"FINGERPRINT_SESSION_COOKIE" envDefault:"fp_session"`
	Path       string `env:"FINGERPRINT_SESSION_COOKIE_PATH" envDefault:"/"`
	MaxAge     int    `env:"FINGERPRINT_SESSION_COOKIE_MAX_AGE" envDefault:"31536000"`
	Secure     bool   `env:"FINGERPRINT_SESSION_COOKIE_SECURE" envDefault:"false"`
	HttpOnly   bool   `env:"FINGERPRINT_SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
}

// Provider issues and returns stable per-client session keys backed by a
// cookie. Keys are created lazily on first use.
type Provider struct {
	cfg Config
}

// NewProvider creates a provider, filling zero-value config fields with
// defaults.
func NewProvider(cfg Config) *Provider {
	if cfg.CookieName == "" {
		cfg.CookieName = "fp_session"
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return &Provider{cfg: cfg}
}

// Get returns the client's session key, issuing a fresh one (and setting the
// cookie) when none exists. The issued cookie is also attached to the
// request so that later calls within the same request observe the same key.
func (p *Provider) Get(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(p.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	key, err := generateKey()
	if err != nil {
		return "", errors.Join(ErrKeyGeneration, err)
	}

	cookie := &http.Cookie{
		Name:     p.cfg.CookieName,
		Value:    key,
		Path:     p.cfg.Path,
		MaxAge:   p.cfg.MaxAge,
		Secure:   p.cfg.Secure,
		HttpOnly: p.cfg.HttpOnly,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
	r.AddCookie(cookie)

	return key, nil
}

func generateKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
