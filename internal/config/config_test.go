package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "GIN_MODE", "LOG_LEVEL", "MODEL_PATH", "QUESTIONNAIRE_PATH",
	"SESSION_SECRET", "SESSION_TTL", "SHUTDOWN_TIMEOUT", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "RATE_LIMIT_PER_MIN", "RATE_LIMIT_SUBMIT_PER_MIN", "ALLOWED_ORIGINS",
	"TRUSTED_PROXIES", "ENABLE_HSTS", "SECURE_COOKIE", "CSP_REPORT_URI",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./models/asd_forest.json", cfg.ModelPath)
	assert.Empty(t, cfg.QuestionnairePath)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, 20, cfg.SubmitRateLimitPerMin)
	assert.Empty(t, cfg.RedisAddr)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.False(t, cfg.EnableHSTS)
	assert.False(t, cfg.SecureCookie)

	assert.True(t, cfg.SessionSecretGenerated)
	assert.Len(t, cfg.SessionSecret, minSecretBytes)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	secret := strings.Repeat("s", 40)
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_PATH", "/srv/model.json")
	t.Setenv("QUESTIONNAIRE_PATH", "/srv/questions.yaml")
	t.Setenv("SESSION_SECRET", secret)
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ENABLE_HSTS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/srv/model.json", cfg.ModelPath)
	assert.Equal(t, "/srv/questions.yaml", cfg.QuestionnairePath)
	assert.Equal(t, []byte(secret), cfg.SessionSecret)
	assert.False(t, cfg.SessionSecretGenerated)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.EnableHSTS)
	assert.True(t, cfg.SecureCookie)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "short secret", key: "SESSION_SECRET", value: "too-short"},
		{name: "bad ttl", key: "SESSION_TTL", value: "forever"},
		{name: "negative ttl", key: "SESSION_TTL", value: "-5m"},
		{name: "bad redis db", key: "REDIS_DB", value: "two"},
		{name: "zero rate limit", key: "RATE_LIMIT_PER_MIN", value: "0"},
		{name: "bad bool", key: "ENABLE_HSTS", value: "sometimes"},
		{name: "bad port", key: "PORT", value: "http"},
		{name: "unknown gin mode", key: "GIN_MODE", value: "production"},
		{name: "origin without scheme", key: "ALLOWED_ORIGINS", value: "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGeneratedSecretsDiffer(t *testing.T) {
	clearEnv(t)

	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionSecret, b.SessionSecret)
}
