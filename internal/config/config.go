package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultLLMModel       = "Qwen/Qwen2.5-VL-7B-Instruct"
	DefaultLLMAPIKey      = "dummy-key"
	DefaultLLMTimeout     = 60 * time.Second
	DefaultAPIHost        = "0.0.0.0"
	DefaultAPIPort        = "8001"
	DefaultHistoryLogTail = 4
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	APIHost string
	APIPort string

	LogLevel  slog.Level
	LogFormat string

	// DBPath enables the decision journal when non-empty.
	DBPath string

	UnwrapFences   bool
	HistoryLogTail int
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.APIHost, c.APIPort)
}

// JournalEnabled reports whether decisions are recorded to SQLite.
func (c *Config) JournalEnabled() bool {
	return c.DBPath != ""
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or a parent directory, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()
	return FromEnv()
}

// loadDotEnv loads the nearest .env file, ignoring errors if none exists.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		_ = godotenv.Load()
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LLMBaseURL: getEnvAny([]string{"OPENAI_API_BASE", "LLM_BASE_URL"}, ""),
		LLMAPIKey:  getEnvAny([]string{"OPENAI_API_KEY", "LLM_API_KEY"}, DefaultLLMAPIKey),
		LLMModel:   getEnv("LLM_MODEL", DefaultLLMModel),
		APIHost:    getEnv("API_HOST", DefaultAPIHost),
		APIPort:    getEnv("API_PORT", DefaultAPIPort),
		LogFormat:  strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DBPath:     getEnv("DB_PATH", ""),
	}

	if cfg.LLMBaseURL == "" {
		return nil, fmt.Errorf("OPENAI_API_BASE is required")
	}

	timeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", DefaultLLMTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("LLM_TIMEOUT must be a valid duration: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT must be greater than 0")
	}
	cfg.LLMTimeout = timeout

	port, err := strconv.Atoi(cfg.APIPort)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("API_PORT must be a port number, got %q", cfg.APIPort)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	unwrap, err := strconv.ParseBool(getEnv("DECISION_UNWRAP_FENCES", "false"))
	if err != nil {
		return nil, fmt.Errorf("DECISION_UNWRAP_FENCES must be a boolean: %w", err)
	}
	cfg.UnwrapFences = unwrap

	tail, err := strconv.Atoi(getEnv("HISTORY_LOG_TAIL", strconv.Itoa(DefaultHistoryLogTail)))
	if err != nil {
		return nil, fmt.Errorf("HISTORY_LOG_TAIL must be a valid integer: %w", err)
	}
	if tail < 0 {
		return nil, fmt.Errorf("HISTORY_LOG_TAIL must not be negative")
	}
	cfg.HistoryLogTail = tail

	if cfg.JournalEnabled() {
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAny returns the first non-empty variable among keys.
func getEnvAny(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}
