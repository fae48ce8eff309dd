package obs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitTracerRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracer(context.Background(), TracingConfig{
		ServiceName:   "agency-api",
		Exporter:      "jaeger-thrift",
		SamplingRatio: 1.0,
		Environment:   "test",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported tracing exporter")
}

func TestInitTracerDefaultsToOTLP(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{
		ServiceName:   "agency-api",
		Endpoint:      "http://localhost:4318",
		Exporter:      "",
		SamplingRatio: 0.5,
		Environment:   "test",
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	_ = shutdown(context.Background())
}
