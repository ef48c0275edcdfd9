package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftproof/paper-warden/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggerConfig
		verify func(t *testing.T, output string)
	}{
		{
			name: "text logger at info level",
			cfg:  config.LoggerConfig{Level: "info", Format: "text"},
			verify: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
				assert.Contains(t, output, `msg="test message"`)
			},
		},
		{
			name: "json logger",
			cfg:  config.LoggerConfig{Level: "debug", Format: "json"},
			verify: func(t *testing.T, output string) {
				var entry map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &entry))
				assert.Equal(t, "INFO", entry["level"])
				assert.Equal(t, "test message", entry["msg"])
			},
		},
		{
			name: "bad level falls back to info",
			cfg:  config.LoggerConfig{Level: "loud", Format: "text"},
			verify: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.cfg, &buf)
			logger.Info("test message")
			tt.verify(t, buf.String())
		})
	}
}

func TestNewDebugLevelSuppression(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggerConfig{Level: "warn", Format: "text"}, &buf)
	logger.Info("hidden")
	logger.Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
