package client

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config tunes the transport. Values come from environment variables with
// the prefix ZBIRKA_CLIENT_, e.g. ZBIRKA_CLIENT_MAX_ATTEMPTS=6.
type Config struct {
	Timeout     time.Duration `envconfig:"TIMEOUT"      default:"30s"`
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"4"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"200ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"5s"`
	UserAgent   string        `envconfig:"USER_AGENT"   default:"zbirka-cli"`
}

// ConfigFromEnv populates Config from the environment.
func ConfigFromEnv() (Config, error) {
	var c Config
	return c, envconfig.Process("ZBIRKA_CLIENT", &c)
}

// DefaultConfig is ConfigFromEnv with an empty environment.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		MaxAttempts: 4,
		BaseBackoff: 200 * time.Millisecond,
		MaxInterval: 5 * time.Second,
		UserAgent:   "zbirka-cli",
	}
}
