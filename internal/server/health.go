package server

import (
	"sync"
	"time"
)

// ComponentStatus represents the health of one upstream dependency.
type ComponentStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// Health tracks the health of upstream dependencies as the pipeline
// exercises them.
type Health struct {
	mu         sync.RWMutex
	components map[string]*ComponentStatus
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]*ComponentStatus),
	}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	if _, exists := h.components[component]; !exists {
		h.components[component] = &ComponentStatus{}
	}

	h.components[component].Healthy = true
	h.components[component].LastCheck = now
	h.components[component].LastSuccess = now
	h.components[component].Message = message
}

// SetUnhealthy marks a component as unhealthy.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	if _, exists := h.components[component]; !exists {
		h.components[component] = &ComponentStatus{}
	}

	h.components[component].Healthy = false
	h.components[component].LastCheck = now
	h.components[component].Message = err.Error()
}

// Snapshot returns a copy of all component statuses.
func (h *Health) Snapshot() map[string]ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make(map[string]ComponentStatus, len(h.components))
	for name, status := range h.components {
		result[name] = *status
	}

	return result
}

// Overall returns true if no component is unhealthy. Components that
// have never been exercised do not count against overall health.
func (h *Health) Overall() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, status := range h.components {
		if !status.Healthy {
			return false
		}
	}

	return true
}
