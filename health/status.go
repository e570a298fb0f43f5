// Package health provides health reporting for windows, the NATS client and the
// process as a whole.
package health

import (
	"regexp"
	"strings"
	"time"
)

// Health state names
const (
	StateHealthy   = "healthy"
	StateDegraded  = "degraded"
	StateUnhealthy = "unhealthy"
)

// Gauge levels reported by Level
const (
	LevelHealthy   = 0
	LevelDegraded  = 1
	LevelUnhealthy = 2
)

var (
	urlRegex        = regexp.MustCompile(`(?:https?|nats|wss?)://[^\s]+`)
	unixPathRegex   = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex       = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status represents the health state of a component or system
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"` // healthy, degraded or unhealthy
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics contains health-related figures for a window
type Metrics struct {
	Uptime       time.Duration `json:"uptime"`
	Count        int           `json:"count"`
	Capacity     int           `json:"capacity"`
	Ingested     uint64        `json:"ingested"`
	Rejected     uint64        `json:"rejected"`
	Evicted      uint64        `json:"evicted"`
	EvictionRate float64       `json:"eviction_rate"`
	LastActivity time.Time     `json:"last_activity,omitzero"`
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

// Level maps the status to the value exported by the health gauge.
// Unknown states count as unhealthy.
func (s Status) Level() int {
	switch s.Status {
	case StateHealthy:
		return LevelHealthy
	case StateDegraded:
		return LevelDegraded
	default:
		return LevelUnhealthy
	}
}

// WithMetrics returns a copy of the status with metrics attached
func (s Status) WithMetrics(metrics *Metrics) Status {
	s.Metrics = metrics
	return s
}

// WithSubStatus adds a sub-status and returns a copy
func (s Status) WithSubStatus(subStatus Status) Status {
	subs := make([]Status, len(s.SubStatuses), len(s.SubStatuses)+1)
	copy(subs, s.SubStatuses)
	s.SubStatuses = append(subs, subStatus)
	return s
}

// sanitizeErrorMessage strips URLs, paths, addresses, ports and credentials
// from an error message before it is exposed on the health endpoint.
func sanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	// URLs contain paths, so they go first.
	sanitized := urlRegex.ReplaceAllString(msg, "[URL]")
	sanitized = unixPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")

	lower := strings.ToLower(sanitized)
	for _, word := range []string{"password", "token", "secret", "credential"} {
		if strings.Contains(lower, word) {
			return credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
		}
	}
	return sanitized
}

// FromError reports component as healthy when err is nil and unhealthy with a
// sanitized message otherwise.
func FromError(component string, err error) Status {
	if err == nil {
		return NewHealthy(component, "ok")
	}
	return NewUnhealthy(component, sanitizeErrorMessage(err.Error()))
}
