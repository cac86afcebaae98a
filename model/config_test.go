package model

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Run("Parse full configuration", func(t *testing.T) {
		config, err := ParseConfig([]byte(`
logLevel: debug
processors:
  - annotate-location
  - builtin-kinds
policies:
  - required-fields
integrations:
  - type: github
    host: github.com
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"annotate-location", "builtin-kinds"}, config.Processors)
		assert.Equal(t, []string{"required-fields"}, config.Policies)
		require.Len(t, config.Integrations, 1)
		assert.Equal(t, "github.com", config.Integrations[0].Host)

		level, err := config.Level()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, level)
	})

	t.Run("Parse rejects empty payload", func(t *testing.T) {
		_, err := ParseConfig([]byte("  \n"))
		assert.Error(t, err)
	})

	t.Run("Parse rejects unknown log level", func(t *testing.T) {
		_, err := ParseConfig([]byte("logLevel: loud\nprocessors: []\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown log level")
	})

	t.Run("Parse rejects integrations without host", func(t *testing.T) {
		_, err := ParseConfig([]byte("processors: []\nintegrations:\n  - type: github\n"))
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Load from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cataloger.yaml")
		require.NoError(t, os.WriteFile(path, []byte("processors: [builtin-kinds]\n"), 0600))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"builtin-kinds"}, config.Processors)
	})

	t.Run("Load missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotEmpty(t, config.Processors, "Expected default processors")
	level, err := config.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}
