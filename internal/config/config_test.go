package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 1000*time.Millisecond, cfg.DebounceWindow)
	assert.Equal(t, 256, cfg.SendBuffer)
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ADDR", ":9999")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TYPING_DEBOUNCE_MS", "500")
	t.Setenv("WS_SEND_BUFFER", "64")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceWindow)
	assert.Equal(t, 64, cfg.SendBuffer)
}

func TestNew_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "yaml")

	_, err := New()
	assert.Error(t, err)
}

func TestNew_NonNumericFallsBack(t *testing.T) {
	t.Setenv("TYPING_DEBOUNCE_MS", "soon")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 1000*time.Millisecond, cfg.DebounceWindow)
}
