package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/stock-manager/internal/config"
)

func TestInitTracer(t *testing.T) {
	t.Run("Should install only the propagator without collector", func(t *testing.T) {
		cleanup, err := InitTracer(context.Background(), config.Otel{ServiceName: "stock-manager"})
		require.NoError(t, err)
		require.NoError(t, cleanup(context.Background()))

		assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
	})
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions(config.Otel{CollectorURL: "collector:4317", Insecure: true}), 3)
	assert.Len(t, exporterOptions(config.Otel{CollectorURL: "collector:4317", CollectorAuth: "Bearer x"}), 4)
}
