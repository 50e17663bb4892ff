package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Addr        string // listen address, e.g. ":3000"
	LogLevel    string // debug | info | warn | error
	DatabaseURL string // postgres connection string; empty disables persistence
}

// Load reads .env if present and builds the config. A missing .env is
// fine; containers usually inject the environment directly.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getEnv("ADDR", ":3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
