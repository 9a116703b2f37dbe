// Package config loads application settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Port          string // HTTP listen port
	DBPath        string // path to the sqlite database file
	SessionSecret string // HMAC key for session tokens, required
	SecureCookie  bool   // set the Secure flag on session cookies
	TemplateDir   string // directory holding html templates
	StaticDir     string // directory holding static assets
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present. The session secret
// has no default: startup must fail rather than run with a baked-in
// key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "budgetwise.db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SecureCookie:  getEnvAsBool("SECURE_COOKIE", false),
		TemplateDir:   getEnv("TEMPLATE_DIR", "web/templates"),
		StaticDir:     getEnv("STATIC_DIR", "web/static"),
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable, or the default
// when unset or empty.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsBool parses an environment variable as a bool.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
