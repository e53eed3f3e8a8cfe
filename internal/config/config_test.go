package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SECRET", "DATABASE_DSN", "HTTP_PORT", "SUBMIT_TIMEOUT", "DRAFT_BACKEND", "SALES_API_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "dev_secret", cfg.Secret)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "file:medeasy.db", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, "sql", cfg.DraftBackend)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SUBMIT_TIMEOUT", "5s")
	t.Setenv("DRAFT_BACKEND", "redis")
	t.Setenv("SALES_API_URL", "https://sales.example.com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, "redis", cfg.DraftBackend)
	assert.Equal(t, "https://sales.example.com", cfg.SalesAPIURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("SUBMIT_TIMEOUT", "-1s")
	t.Setenv("DRAFT_BACKEND", "floppy")

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, "sql", cfg.DraftBackend)
}
