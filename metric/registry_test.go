package metric

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/navith/genreguide/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.NotNil(t, registry.CoreMetrics())
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	require.NoError(t, registry.RegisterCounter("test-service", "test_counter", counter))
	counter.Inc()

	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "test_counter" {
			found = true
			break
		}
	}
	assert.True(t, found, "Counter should be registered in Prometheus registry")
}

func TestMetricsRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dup_gauge", Help: "dup"})
	require.NoError(t, registry.RegisterGauge("svc", "dup_gauge", gauge))

	err := registry.RegisterGauge("svc", "dup_gauge", gauge)
	require.Error(t, err)
	assert.True(t, gerrors.IsInvalid(err))

	// Same collector under a different key conflicts inside Prometheus
	err = registry.RegisterGauge("other", "dup_gauge", gauge)
	require.Error(t, err)
	var ce *gerrors.ClassifiedError
	assert.True(t, errors.As(err, &ce))

	assert.True(t, registry.Unregister("svc", "dup_gauge"))
	assert.False(t, registry.Unregister("svc", "dup_gauge"))
}

func TestCoreMetrics_Record(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	core.RecordQuery("ok", 10*time.Millisecond)
	core.RecordStoreOperation("hget", nil, time.Millisecond)
	core.RecordStoreOperation("hget", errors.New("boom"), time.Millisecond)
	core.RecordHealthStatus("store", 2)

	server := NewServer(0, "", registry)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `genreguide_graphql_queries_total{status="ok"} 1`))
	assert.True(t, strings.Contains(body, `genreguide_store_operations_total{operation="hget",result="error"} 1`))
	assert.True(t, strings.Contains(body, `genreguide_health_status{component="store"} 2`))
	assert.Equal(t, "http://localhost:9090/metrics", server.Address())
}
