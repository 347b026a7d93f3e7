package demo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/fingerprint/core/binding"
	"github.com/dmitrymomot/fingerprint/core/hitcount"
	"github.com/dmitrymomot/fingerprint/core/tracker"
	"github.com/dmitrymomot/fingerprint/core/urlregistry"
	"github.com/dmitrymomot/fingerprint/handler"
	"github.com/dmitrymomot/fingerprint/integration/database/pg"
	"github.com/dmitrymomot/fingerprint/integration/database/redis"
	"github.com/dmitrymomot/fingerprint/middleware"
	"github.com/dmitrymomot/fingerprint/pkg/sessionkey"
	"github.com/dmitrymomot/fingerprint/storage/postgres"
	"github.com/dmitrymomot/fingerprint/storage/rediscache"
)

// App wires the full fingerprint pipeline against PostgreSQL and Redis.
// It exists as a reference for embedding the module into a host application.
type App struct {
	config  Config
	logger  *slog.Logger
	pool    *pgxpool.Pool
	handler http.Handler
}

// NewApp loads configuration from the environment (and an optional .env
// file), connects to PostgreSQL and Redis, migrates the schema, and mounts
// the fingerprint page plus a hit-count endpoint behind the fingerprinting
// middleware.
func NewApp(ctx context.Context) (*App, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel).With("app", cfg.AppName)

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx, pool, postgres.Migrations, cfg.DB, logger); err != nil {
		pool.Close()
		return nil, err
	}

	store := postgres.New(pool)

	registryOpts := []urlregistry.Option{urlregistry.WithLogger(logger)}
	if rdb, err := redis.Connect(ctx, cfg.Redis); err != nil {
		// The cache is optional; run uncached when Redis is unreachable.
		logger.WarnContext(ctx, "redis unavailable, url cache disabled", "error", err)
	} else if cache := rediscache.New(rdb, cfg.Cache); cache != nil {
		registryOpts = append(registryOpts, urlregistry.WithCache(cache))
	}

	urls := urlregistry.New(store, registryOpts...)
	bindings := binding.NewTable(store, binding.WithLogger(logger))
	trk := tracker.New(bindings, urls, store, tracker.WithLogger(logger))
	counter := hitcount.NewCounter(store)
	keys := sessionkey.NewProvider(cfg.Session)

	page, err := handler.NewPage(handler.PageConfig{
		Tracker:    trk,
		SessionKey: keys.Get,
		Logger:     logger,
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/fingerprint", page)
	mux.HandleFunc("/hits", func(w http.ResponseWriter, r *http.Request) {
		urls := r.URL.Query()["url"]
		counts, err := counter.CountDistinctSessionsPerURL(r.Context(), urls)
		if err != nil {
			logger.ErrorContext(r.Context(), "hit count failed", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(counts)
	})
	dbCheck := pg.Healthcheck(pool)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := dbCheck(r.Context()); err != nil {
			logger.ErrorContext(r.Context(), "healthcheck failed", "error", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := middleware.Fingerprint(middleware.FingerprintConfig{
		Tracker:    trk,
		SessionKey: keys.Get,
		Logger:     logger,
		Skip: func(r *http.Request) bool {
			// The page handler fingerprints its own GET; skip double entry.
			return r.URL.Path == "/fingerprint" || r.URL.Path == "/hits" || r.URL.Path == "/health"
		},
	})(mux)

	return &App{
		config:  cfg,
		logger:  logger,
		pool:    pool,
		handler: wrapped,
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until the listener fails or the process exits.
func (a *App) Run() error {
	a.logger.Info("listening", "addr", a.config.HttpAddr)
	return http.ListenAndServe(a.config.HttpAddr, a.handler)
}

// Close releases the database pool.
func (a *App) Close() {
	a.pool.Close()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
