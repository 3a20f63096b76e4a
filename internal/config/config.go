// Package config reads hosting configuration from the environment.
package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const minSecretBytes = 32

// Config configures hosting only. Nothing here changes how a screening is scored.
type Config struct {
	Port              string
	GinMode           string
	LogLevel          string
	ModelPath         string
	QuestionnairePath string

	SessionSecret          []byte
	SessionSecretGenerated bool
	SessionTTL             time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitPerMin       int
	SubmitRateLimitPerMin int

	AllowedOrigins []string
	TrustedProxies []string
	EnableHSTS     bool
	SecureCookie   bool
	CSPReportURI   string

	ShutdownTimeout time.Duration
}

// Load reads the environment, applying defaults for unset variables.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		GinMode:           getEnvOrDefault("GIN_MODE", "release"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		ModelPath:         getEnvOrDefault("MODEL_PATH", "./models/asd_forest.json"),
		QuestionnairePath: os.Getenv("QUESTIONNAIRE_PATH"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		TrustedProxies:    splitList(os.Getenv("TRUSTED_PROXIES")),
		CSPReportURI:      os.Getenv("CSP_REPORT_URI"),
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMin, err = intEnv("RATE_LIMIT_PER_MIN", 120); err != nil {
		return Config{}, err
	}
	if cfg.SubmitRateLimitPerMin, err = intEnv("RATE_LIMIT_SUBMIT_PER_MIN", 20); err != nil {
		return Config{}, err
	}
	if cfg.EnableHSTS, err = boolEnv("ENABLE_HSTS", false); err != nil {
		return Config{}, err
	}
	// behind HTTPS the session cookie is Secure unless told otherwise
	if cfg.SecureCookie, err = boolEnv("SECURE_COOKIE", cfg.EnableHSTS); err != nil {
		return Config{}, err
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		if len(secret) < minSecretBytes {
			return Config{}, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSecretBytes)
		}
		cfg.SessionSecret = []byte(secret)
	} else {
		cfg.SessionSecret = make([]byte, minSecretBytes)
		if _, err := rand.Read(cfg.SessionSecret); err != nil {
			return Config{}, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecretGenerated = true
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.RateLimitPerMin <= 0 || c.SubmitRateLimitPerMin <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %w", err)
	}
	for _, origin := range c.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("ALLOWED_ORIGINS entry %q must start with http:// or https://", origin)
		}
	}
	return nil
}

// Helper function for environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
