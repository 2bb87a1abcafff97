package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("CASDOOR_ENDPOINT", "")
	t.Setenv("SUBMIT_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8086", cfg.BackendURL)
	assert.Equal(t, 20*time.Second, cfg.SubmitTimeout)
}

func TestLoadConfigRejectsBadBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "not-a-url")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL")
}

func TestLoadConfigRejectsBadCasdoorEndpoint(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:8086")
	t.Setenv("CASDOOR_ENDPOINT", "casdoor.local")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CASDOOR_ENDPOINT")
}

func TestSubmitTimeoutFallsBackOnGarbage(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("CASDOOR_ENDPOINT", "")
	t.Setenv("SUBMIT_TIMEOUT_SECONDS", "-5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.SubmitTimeout)
}
