package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	ScriptURL          string        // Remote spreadsheet collaborator endpoint
	APIKey             string        // Shared secret sent as the `key` parameter on every call
	SessionSecret      string        // HMAC secret for signing session cookies
	Port               string        // Service port
	SessionTTL         time.Duration // Session lifetime
	StaticDir          string        // Directory holding the portal HTML pages
	RedisAddr          string        // Optional Redis address for the session store
	RedisPassword      string        // Redis auth, if any
	InjectLogoutWidget bool          // Inject the logout widget on authenticated pages
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	config := &Config{
		ScriptURL:          getEnv("SCRIPT_URL", ""),
		APIKey:             getEnv("API_KEY", ""),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		Port:               getEnv("PORT", "3000"),
		SessionTTL:         24 * time.Hour,
		StaticDir:          getEnv("STATIC_DIR", "public"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		InjectLogoutWidget: getEnv("INJECT_LOGOUT_WIDGET", "") == "true",
	}

	// Parse SESSION_TTL if provided
	if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL format: %w", err)
		}
		config.SessionTTL = duration
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ScriptURL == "" {
		return fmt.Errorf("SCRIPT_URL cannot be empty")
	}

	if c.APIKey == "" {
		return fmt.Errorf("API_KEY cannot be empty")
	}

	// No insecure fallback secret: refuse to start without one
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET cannot be empty")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
