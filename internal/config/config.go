package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment. A .env
// file in the working directory is honored for local development.
type Config struct {
	BindAddr        string
	RedisAddr       string
	JWKSEndpoint    string
	AllowedOrigin   string
	NumberOfCrosses int
	RubberReset     bool
	LockTTL         time.Duration
	DevAuth         bool
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		BindAddr:        envOr("SJAVS_BIND_ADDR", ":8080"),
		RedisAddr:       envOr("SJAVS_REDIS_ADDR", "127.0.0.1:6379"),
		JWKSEndpoint:    os.Getenv("SJAVS_JWKS_URL"),
		AllowedOrigin:   envOr("SJAVS_ALLOWED_ORIGIN", "*"),
		NumberOfCrosses: 3,
		LockTTL:         5 * time.Second,
	}

	if v := os.Getenv("SJAVS_NUMBER_OF_CROSSES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SJAVS_NUMBER_OF_CROSSES %q", v)
		}
		cfg.NumberOfCrosses = n
	}
	if v := os.Getenv("SJAVS_LOCK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid SJAVS_LOCK_TTL %q", v)
		}
		cfg.LockTTL = d
	}
	cfg.RubberReset = envBool("SJAVS_RUBBER_RESET")
	cfg.DevAuth = envBool("SJAVS_DEV_AUTH")

	if cfg.JWKSEndpoint == "" && !cfg.DevAuth {
		return nil, fmt.Errorf("SJAVS_JWKS_URL is required unless SJAVS_DEV_AUTH is set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
