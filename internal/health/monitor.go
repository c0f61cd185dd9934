package health

import (
	"sync"
	"time"
)

// Phase describes what the controller is doing right now.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseRotating Phase = "rotating"
	PhaseBackoff  Phase = "backoff"
	PhaseStopped  Phase = "stopped"
)

// Status is the externally visible controller state.
type Status struct {
	Healthy       bool      `json:"healthy"`
	Phase         Phase     `json:"phase"`
	RunID         string    `json:"run_id"`
	Attempts      int       `json:"attempts"`
	Rotations     int       `json:"rotations"`
	LastOutcome   string    `json:"last_outcome,omitempty"`
	CurrentHost   string    `json:"current_host,omitempty"`
	BlocklistSize int       `json:"blocklist_size"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Monitor tracks controller state for the health endpoints. The scheduler
// and rotation controller push updates; the HTTP server reads snapshots.
type Monitor struct {
	mu     sync.RWMutex
	status Status
}

func NewMonitor() *Monitor {
	return &Monitor{status: Status{
		Healthy:   true,
		Phase:     PhaseIdle,
		UpdatedAt: time.Now(),
	}}
}

func (m *Monitor) SetRunID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.RunID = id
	m.status.UpdatedAt = time.Now()
}

func (m *Monitor) SetPhase(p Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Phase = p
	m.status.UpdatedAt = time.Now()
}

func (m *Monitor) RecordAttempt(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Attempts++
	m.status.LastOutcome = outcome
	m.status.UpdatedAt = time.Now()
}

func (m *Monitor) RecordRotation(host string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Rotations++
	if host != "" {
		m.status.CurrentHost = host
	}
	m.status.UpdatedAt = time.Now()
}

func (m *Monitor) SetBlocklistSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.BlocklistSize = n
	m.status.UpdatedAt = time.Now()
}

// SetUnhealthy marks the controller as terminally failed. There is no way
// back; a fatal run ends the process.
func (m *Monitor) SetUnhealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Healthy = false
	m.status.UpdatedAt = time.Now()
}

func (m *Monitor) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
