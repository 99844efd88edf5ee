package config

import (
	"encoding/json"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string   `json:"serverAddress"`
	DatabasePath  string   `json:"databasePath"`
	OwnerID       string   `json:"ownerId"`
	Cloud         Cloud    `json:"cloud"`
	Security      Security `json:"security"`
	Retry         Retry    `json:"retry"`
}

// Cloud configuration for the remote pet-record store. When DatabaseURL is
// set the daemon talks to PostgreSQL directly; otherwise it uses the
// HTTP/JSON API at BaseURL.
type Cloud struct {
	BaseURL               string `json:"baseUrl"`
	Token                 string `json:"token"`
	DatabaseURL           string `json:"databaseUrl"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds"`
}

// UsePostgres returns true if the cloud store is PostgreSQL-backed
func (c *Config) UsePostgres() bool {
	return c.Cloud.DatabaseURL != ""
}

// Security configuration
type Security struct {
	APIKey       string `json:"apiKey"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// Retry configuration for the background pending-sync loop
type Retry struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"intervalMinutes"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "petsync.db",
		OwnerID:       "default",
		Cloud: Cloud{
			BaseURL:               "http://localhost:8080",
			RequestTimeoutSeconds: 15,
		},
		Security: Security{
			APIKey:       "CHANGE_THIS_TO_A_SECURE_API_KEY_AT_LEAST_32_CHARS",
			APIKeyHeader: "X-API-Key",
		},
		Retry: Retry{
			Enabled:         true,
			IntervalMinutes: 5,
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if ownerID := os.Getenv("OWNER_ID"); ownerID != "" {
		cfg.OwnerID = ownerID
	}
	if baseURL := os.Getenv("CLOUD_BASE_URL"); baseURL != "" {
		cfg.Cloud.BaseURL = baseURL
	}
	if token := os.Getenv("CLOUD_TOKEN"); token != "" {
		cfg.Cloud.Token = token
	}
	if dbURL := os.Getenv("CLOUD_DATABASE_URL"); dbURL != "" {
		cfg.Cloud.DatabaseURL = dbURL
	}
	if timeout := os.Getenv("CLOUD_REQUEST_TIMEOUT_SECONDS"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.Cloud.RequestTimeoutSeconds = seconds
		}
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}

	// Retry loop configuration
	if enabled := os.Getenv("RETRY_ENABLED"); enabled != "" {
		cfg.Retry.Enabled = enabled == "true" || enabled == "1"
	}
	if interval := os.Getenv("RETRY_INTERVAL_MINUTES"); interval != "" {
		if minutes, err := strconv.Atoi(interval); err == nil && minutes > 0 {
			cfg.Retry.IntervalMinutes = minutes
		}
	}

	return cfg, nil
}
