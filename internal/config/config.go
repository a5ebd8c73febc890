// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	CorpusPath  string
	DBPath      string
	Session     SessionConfig
	Ledger      LedgerConfig
	Provider    ProviderConfig
	Retrieval   RetrievalConfig
	// RecordTimeout bounds each best-effort conversation log write.
	RecordTimeout time.Duration
	// ReplayInterval is how often spilled log writes are retried.
	ReplayInterval time.Duration
}

// SessionConfig controls signed session tokens.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// LedgerConfig points at the external identity/quota/ledger service.
type LedgerConfig struct {
	BaseURL      string
	SharedSecret string
	Timeout      time.Duration
}

// ProviderConfig identifies the embedding/generation provider. Model names
// and temperature are server-side configuration, never request-controlled.
type ProviderConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	Timeout        time.Duration
}

// RetrievalConfig controls passage retrieval.
type RetrievalConfig struct {
	TopK int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		CorpusPath:  getEnv("CORPUS_PATH", "./data/embeddings.json"),
		DBPath:      getEnv("DB_PATH", "./data/manualchat.db"),
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			TTL:    getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		},
		Ledger: LedgerConfig{
			BaseURL:      getEnv("LEDGER_API_URL", ""),
			SharedSecret: getEnv("LEDGER_SHARED_SECRET", ""),
			Timeout:      getEnvDuration("LEDGER_TIMEOUT", 15*time.Second),
		},
		Provider: ProviderConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			ChatModel:      getEnv("CHAT_MODEL", "gpt-4.1-mini"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Temperature:    getEnvFloat("CHAT_TEMPERATURE", 0.2),
			Timeout:        getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		},
		Retrieval: RetrievalConfig{
			TopK: getEnvInt("TOP_K", 5),
		},
		RecordTimeout:  getEnvDuration("RECORD_TIMEOUT", 10*time.Second),
		ReplayInterval: getEnvDuration("REPLAY_INTERVAL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.CorpusPath == "" {
		return fmt.Errorf("CORPUS_PATH cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("LEDGER_API_URL is required")
	}
	if c.Ledger.SharedSecret == "" {
		return fmt.Errorf("LEDGER_SHARED_SECRET is required")
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("TOP_K must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
