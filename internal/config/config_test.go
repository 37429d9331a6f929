package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stock-manager/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		type Config struct {
			Log   config.Log
			HTTP  config.HTTP
			Relay config.Relay
			Event config.Event
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
		assert.Equal(t, time.Second, cfg.Relay.Interval)
		assert.Equal(t, 3, cfg.Relay.ProduceRetries)
		assert.Equal(t, int64(5), cfg.Event.LowStockThreshold)
	})

	t.Run("Should read environment", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("HTTP_ALLOWED_ORIGINS", "http://a.test,http://b.test")

		type Config struct {
			Log  config.Log
			HTTP config.HTTP
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
	})

	t.Run("Should fail on missing required postgres settings", func(t *testing.T) {
		type Config struct {
			Postgres config.Postgres
		}

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should reject unknown log format", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")

		type Config struct {
			Log config.Log
		}

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}
