package health

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status values
const (
	StateHealthy   = "healthy"
	StateDegraded  = "degraded"
	StateUnhealthy = "unhealthy"
)

func newStatus(component, state, message string) Status {
	return Status{
		Component: component,
		Healthy:   state == StateHealthy,
		Status:    state,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewHealthy reports a check that passed.
func NewHealthy(component, message string) Status {
	return newStatus(component, StateHealthy, message)
}

// NewUnhealthy reports a check that failed.
func NewUnhealthy(component, message string) Status {
	return newStatus(component, StateUnhealthy, message)
}

// NewDegraded reports a check that passed with reduced service.
func NewDegraded(component, message string) Status {
	return newStatus(component, StateDegraded, message)
}

// Aggregate rolls the store checks up into one status: unhealthy if any
// check failed, else degraded if any is degraded, else healthy. The message
// names the failing checks. Sub-statuses are ordered by component.
func Aggregate(component string, checks []Status) Status {
	if len(checks) == 0 {
		return NewHealthy(component, "no checks have run")
	}

	var failed, degraded []string
	for _, c := range checks {
		switch {
		case c.IsUnhealthy():
			failed = append(failed, c.Component)
		case c.IsDegraded():
			degraded = append(degraded, c.Component)
		}
	}
	slices.Sort(failed)
	slices.Sort(degraded)

	var status Status
	switch {
	case len(failed) > 0:
		status = NewUnhealthy(component, fmt.Sprintf("failing: %s", strings.Join(failed, ", ")))
	case len(degraded) > 0:
		status = NewDegraded(component, fmt.Sprintf("degraded: %s", strings.Join(degraded, ", ")))
	default:
		status = NewHealthy(component, fmt.Sprintf("checks passing: %d", len(checks)))
	}

	status.SubStatuses = slices.Clone(checks)
	slices.SortFunc(status.SubStatuses, func(a, b Status) int {
		return strings.Compare(a.Component, b.Component)
	})
	return status
}
