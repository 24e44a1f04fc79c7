package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dshills/purdah/internal/config"
)

func TestSetup_Disabled(t *testing.T) {
	tp, shutdown, err := Setup(context.Background(), config.TelemetryConfig{Endpoint: "localhost:4318"})
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := tp.Tracer(InstrumentationName).Start(context.Background(), "x")
	assert.False(t, span.SpanContext().IsValid(), "no-op spans carry no context")
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Enabled(t *testing.T) {
	tp, shutdown, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "localhost:4318",
		Insecure:    true,
		ServiceName: "purdah-test",
	})
	require.NoError(t, err)
	_, ok := tp.(*sdktrace.TracerProvider)
	assert.True(t, ok)
	assert.NoError(t, shutdown(context.Background()))
}
