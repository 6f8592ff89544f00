package health

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/navith/genreguide/metric"
)

// Checker is a dependency that can be probed for reachability.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Ping calls f.
func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Monitor tracks health of multiple components in a thread-safe manner
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
	checks   map[string]Checker
	metrics  *metric.Metrics
	logger   *slog.Logger
}

// NewMonitor creates a new health monitor. metrics may be nil.
func NewMonitor(metrics *metric.Metrics, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		statuses: make(map[string]Status),
		checks:   make(map[string]Checker),
		metrics:  metrics,
		logger:   logger.With("component", "health"),
	}
}

// Register adds a checker probed by Check and Run.
func (m *Monitor) Register(name string, checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = checker
}

// Update updates the health status for a named component
func (m *Monitor) Update(name string, status Status) {
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.mu.Lock()
	previous, had := m.statuses[name]
	m.statuses[name] = status
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordHealthStatus(name, status.Level())
	}
	if had && previous.Status != status.Status {
		m.logger.Info("health changed", "target", name, "from", previous.Status, "to", status.Status,
			"message", status.Message)
	}
}

// Get retrieves the health status for a named component
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// Check probes every registered checker once, each bounded by timeout.
func (m *Monitor) Check(ctx context.Context, timeout time.Duration) {
	m.mu.RLock()
	checks := make(map[string]Checker, len(m.checks))
	for name, checker := range m.checks {
		checks[name] = checker
	}
	m.mu.RUnlock()

	for name, checker := range checks {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		err := checker.Ping(probeCtx)
		cancel()
		m.Update(name, FromError(name, err, time.Since(start)))
	}
}

// Run probes the registered checkers every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval, timeout time.Duration) {
	m.Check(ctx, timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx, timeout)
		}
	}
}

// AggregateHealth returns an aggregated health status for the entire system
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	subStatuses := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		subStatuses = append(subStatuses, status)
	}
	m.mu.RUnlock()

	sort.Slice(subStatuses, func(i, j int) bool {
		return subStatuses[i].Component < subStatuses[j].Component
	})
	return Aggregate(systemName, subStatuses)
}
