package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the relay process.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `validate:"required"`
	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string `validate:"oneof=text json"`
	// DebounceWindow is the typing idle gap advertised to clients.
	DebounceWindow time.Duration `validate:"gt=0"`
	// SendBuffer is the per-client outbound queue size.
	SendBuffer int `validate:"gt=0"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:           getEnv("APP_ADDR", ":8080"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		DebounceWindow: time.Duration(getEnvInt("TYPING_DEBOUNCE_MS", 1000)) * time.Millisecond,
		SendBuffer:     getEnvInt("WS_SEND_BUFFER", 256),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring non-numeric %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
