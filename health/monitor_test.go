package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/metric"
)

func TestMonitor_CheckRecordsStatus(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	monitor := NewMonitor(registry.CoreMetrics(), nil)

	failing := true
	monitor.Register("store", CheckerFunc(func(context.Context) error {
		if failing {
			return errors.New("dial tcp 10.0.0.5:6379: connect: connection refused")
		}
		return nil
	}))

	monitor.Check(context.Background(), time.Second)

	status, ok := monitor.Get("store")
	require.True(t, ok)
	assert.True(t, status.IsUnhealthy())
	assert.NotContains(t, status.Message, "10.0.0.5")
	assert.NotContains(t, status.Message, "6379")
	assert.Equal(t, float64(0), testutil.ToFloat64(registry.CoreMetrics().HealthStatus.WithLabelValues("store")))

	failing = false
	monitor.Check(context.Background(), time.Second)

	status, _ = monitor.Get("store")
	assert.True(t, status.IsHealthy())
	assert.NotEmpty(t, status.Latency)
	assert.Equal(t, float64(2), testutil.ToFloat64(registry.CoreMetrics().HealthStatus.WithLabelValues("store")))
}

func TestMonitor_CheckAppliesTimeout(t *testing.T) {
	monitor := NewMonitor(nil, nil)
	monitor.Register("slow", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	monitor.Check(context.Background(), 10*time.Millisecond)

	status, ok := monitor.Get("slow")
	require.True(t, ok)
	assert.False(t, status.Healthy)
}

func TestMonitor_AggregateHealth(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     string
	}{
		{"empty", nil, "healthy"},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, "healthy"},
		{"degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, "degraded"},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", "")}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := NewMonitor(nil, nil)
			for _, s := range tt.statuses {
				monitor.Update(s.Component, s)
			}
			aggregate := monitor.AggregateHealth("genreguide")
			assert.Equal(t, tt.want, aggregate.Status)
			assert.Len(t, aggregate.SubStatuses, len(tt.statuses))
		})
	}
}

func TestAggregate_NamesFailingChecks(t *testing.T) {
	aggregate := Aggregate("genreguide", []Status{
		NewUnhealthy("store.redis", "connection refused"),
		NewHealthy("cache", ""),
		NewUnhealthy("store.nats", "timeout"),
	})

	assert.Equal(t, StateUnhealthy, aggregate.Status)
	assert.False(t, aggregate.Healthy)
	assert.Equal(t, "failing: store.nats, store.redis", aggregate.Message)
	require.Len(t, aggregate.SubStatuses, 3)
	assert.Equal(t, "cache", aggregate.SubStatuses[0].Component)
	assert.Equal(t, "store.redis", aggregate.SubStatuses[2].Component)

	healthy := Aggregate("genreguide", []Status{NewHealthy("store.memory", "reachable")})
	assert.True(t, healthy.Healthy)
	assert.Equal(t, "checks passing: 1", healthy.Message)
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	monitor := NewMonitor(nil, nil)
	calls := make(chan struct{}, 16)
	monitor.Register("store", CheckerFunc(func(context.Context) error {
		select {
		case calls <- struct{}{}:
		default:
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx, 5*time.Millisecond, time.Second)
		close(done)
	}()

	<-calls
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	got := sanitizeErrorMessage("redis://user:pw@cache:6379 failed, password=hunter2")
	assert.NotContains(t, got, "hunter2")
	assert.Contains(t, got, "[URL]")
	assert.Equal(t, "", sanitizeErrorMessage(""))
}
