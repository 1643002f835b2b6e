// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server and persistence.
type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults. An empty
// DATABASE_URL selects the in-memory store.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8082"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 10),
	}
}
