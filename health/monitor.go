package health

import (
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"
)

// Recorder receives the gauge level of every status update.
// *metric.Metrics satisfies it.
type Recorder interface {
	RecordHealth(component string, level int)
}

// Check produces the current status of a component on demand
type Check func() Status

// Monitor tracks health of multiple components in a thread-safe manner.
// Components either push updates with Update or register a Check that is
// evaluated whenever the aggregate is requested.
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
	checks   map[string]Check
	recorder Recorder
}

// NewMonitor creates a new health monitor. recorder may be nil.
func NewMonitor(recorder Recorder) *Monitor {
	return &Monitor{
		statuses: make(map[string]Status),
		checks:   make(map[string]Check),
		recorder: recorder,
	}
}

// Update updates the health status for a named component
func (m *Monitor) Update(name string, status Status) {
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.statuses[name] = status
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.RecordHealth(name, status.Level())
	}
}

// UpdateHealthy marks a component healthy
func (m *Monitor) UpdateHealthy(name, message string) {
	m.Update(name, NewHealthy(name, message))
}

// UpdateUnhealthy marks a component unhealthy
func (m *Monitor) UpdateUnhealthy(name, message string) {
	m.Update(name, NewUnhealthy(name, message))
}

// UpdateDegraded marks a component degraded
func (m *Monitor) UpdateDegraded(name, message string) {
	m.Update(name, NewDegraded(name, message))
}

// Register adds a check evaluated on every Refresh
func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// Refresh evaluates every registered check and stores the results
func (m *Monitor) Refresh() {
	m.mu.RLock()
	checks := maps.Clone(m.checks)
	m.mu.RUnlock()

	for name, check := range checks {
		m.Update(name, check())
	}
}

// Get retrieves the health status for a named component
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// GetAll returns a copy of all current health statuses
func (m *Monitor) GetAll() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.statuses)
}

// Remove removes a component and its check from monitoring
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.statuses, name)
	delete(m.checks, name)
}

// ListComponents returns the sorted names of all monitored components
func (m *Monitor) ListComponents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.statuses))
}

// Count returns the number of components being monitored
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.statuses)
}

// AggregateHealth returns an aggregated health status for the entire system.
// Sub-statuses are ordered by component name.
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	subStatuses := make([]Status, 0, len(m.statuses))
	for _, name := range slices.Sorted(maps.Keys(m.statuses)) {
		subStatuses = append(subStatuses, m.statuses[name])
	}
	m.mu.RUnlock()

	return Aggregate(systemName, subStatuses)
}

// Handler serves the aggregate status as JSON after refreshing registered
// checks. Unhealthy systems answer 503.
func (m *Monitor) Handler(systemName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		m.Refresh()
		status := m.AggregateHealth(systemName)

		w.Header().Set("Content-Type", "application/json")
		if status.IsUnhealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
}
