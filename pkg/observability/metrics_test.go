package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitMetricsServesInstruments(t *testing.T) {
	provider, handler, err := InitMetrics(MetricsConfig{ServiceName: "bib-decision"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	counter, err := provider.Meter("test").Int64Counter("test_decisions")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "test_decisions")
	assert.Contains(t, body, "go_goroutines")
}

func TestInitMetricsRegistriesAreIndependent(t *testing.T) {
	p1, _, err := InitMetrics(MetricsConfig{ServiceName: "a"})
	require.NoError(t, err)
	p2, _, err := InitMetrics(MetricsConfig{ServiceName: "b"})
	require.NoError(t, err)

	_ = p1.Shutdown(context.Background())
	_ = p2.Shutdown(context.Background())
}

func TestInitTracerWithoutExporter(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{ServiceName: "bib-decision"})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "probe")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracerWithExporter(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{
		ServiceName: "bib-decision",
		Endpoint:    "127.0.0.1:4317",
		Insecure:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
