package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-api/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("DefaultStdout", func(t *testing.T) {
		l, closer, err := NewLogger(config.LogConfig{Level: "info", Output: "stdout"}, "production", "v1")
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})

	t.Run("DebugConsoleInDevelopment", func(t *testing.T) {
		l, closer, err := NewLogger(config.LogConfig{Level: "debug"}, "development", "v1")
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
	})

	t.Run("UnknownLevelFallsBackToInfo", func(t *testing.T) {
		l, _, err := NewLogger(config.LogConfig{Level: "chatty"}, "test", "v1")
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "api.log")
		l, closer, err := NewLogger(config.LogConfig{Output: "file", FilePath: path}, "test", "v1")
		require.NoError(t, err)
		require.NotNil(t, closer)
		l.Info().Msg("hello")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"hello"`)
		assert.Contains(t, string(data), `"app":"hotel-booking-api"`)
	})

	t.Run("FileMissingPath", func(t *testing.T) {
		_, _, err := NewLogger(config.LogConfig{Output: "file"}, "test", "v1")
		assert.Error(t, err)
	})
}
