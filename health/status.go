// Package health tracks the health of the server's dependencies, chiefly
// store connectivity, and reports it on the HTTP health endpoint.
package health

import (
	"regexp"
	"strings"
	"time"
)

// Pre-compiled regexes for error message sanitization
var (
	urlRegex        = regexp.MustCompile(`(?:https?|nats|redis|rediss|wss?)://[^\s]+`)
	unixPathRegex   = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex       = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status represents the health state of a component or system
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"` // "healthy", "unhealthy", "degraded"
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Latency     string    `json:"latency,omitempty"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StateHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StateDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StateUnhealthy
}

// Level maps the status onto the health gauge scale.
func (s Status) Level() int {
	switch s.Status {
	case StateHealthy:
		return 2
	case StateDegraded:
		return 1
	default:
		return 0
	}
}

// sanitizeErrorMessage strips addresses, paths and credentials from store
// errors before they are exposed on the unauthenticated health endpoint.
func sanitizeErrorMessage(err string) string {
	if err == "" {
		return ""
	}

	sanitized := urlRegex.ReplaceAllString(err, "[URL]")
	sanitized = unixPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")

	lower := strings.ToLower(sanitized)
	if strings.Contains(lower, "password") || strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret") || strings.Contains(lower, "credential") {
		sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
	}

	return sanitized
}

// FromError builds an unhealthy status from a failed check, or a healthy one
// when err is nil.
func FromError(component string, err error, latency time.Duration) Status {
	var status Status
	if err != nil {
		status = NewUnhealthy(component, sanitizeErrorMessage(err.Error()))
	} else {
		status = NewHealthy(component, "reachable")
	}
	status.Latency = latency.String()
	return status
}
