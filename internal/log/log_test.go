package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stock-manager/internal/config"
	"github.com/tuanvumaihuynh/stock-manager/pkg/correlationid"
)

func TestEnrichedHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo}, &buf))

	ctx := correlationid.NewContext(context.Background(), "corr-42")
	logger.With(slog.String("service", "test")).InfoContext(ctx, "stock withdrawn", slog.Int64("amount", 5))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "stock withdrawn", line["msg"])
	assert.Equal(t, "corr-42", line["correlation_id"])
	assert.Equal(t, "test", line["service"])
	assert.NotContains(t, line, "trace_id")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(config.Log{Format: config.LogFormatText, Level: slog.LevelWarn}, &buf))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("low stock")
	assert.Contains(t, buf.String(), "low stock")
}
