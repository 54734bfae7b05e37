package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("catalog-search")
	assert.Equal(t, "catalog-search", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("catalog-search"))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig("catalog-search")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "127.0.0.1:0"

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "expected an SDK tracer provider")

	// The exporter cannot reach the endpoint; only the call matters.
	_ = shutdown(context.Background())
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		sampled bool
	}{
		{"always", 1.0, true},
		{"above one", 3, true},
		{"never", 0, false},
		{"negative", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(
				sdktrace.WithSampler(Sampler(tt.rate)),
				sdktrace.WithSpanProcessor(rec),
			)
			_, span := tp.Tracer("test").Start(context.Background(), "search")
			span.End()

			assert.Equal(t, tt.sampled, len(rec.Ended()) == 1)
		})
	}
}

func TestTracer_UsesGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	_, span := Tracer("catalog-search").Start(context.Background(), "rank")
	span.End()

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "rank", rec.Ended()[0].Name())
}
