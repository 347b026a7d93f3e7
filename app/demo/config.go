package demo

import (
	"github.com/dmitrymomot/fingerprint/integration/database/pg"
	"github.com/dmitrymomot/fingerprint/integration/database/redis"
	"github.com/dmitrymomot/fingerprint/pkg/sessionkey"
	"github.com/dmitrymomot/fingerprint/storage/rediscache"
)

// Config aggregates the environment-driven settings of the demo wiring.
type Config struct {
	DB      pg.Config
	Redis   redis.Config
	Cache   rediscache.Config
	Session sessionkey.Config

	AppName  string `env:"APP_NAME" envDefault:"fingerprint-demo"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	HttpAddr string `env:"HTTP_ADDR" envDefault:"localhost:8080"`
}
