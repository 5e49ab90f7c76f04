package sync

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the sync engine's lifecycle token.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateFailed  State = "failed"
)

// Status serializes access to the engine state. A second run requested while
// one is running is refused immediately, never queued; excess requests are
// dropped and the caller decides whether to retry.
type Status struct {
	mu sync.Mutex

	state           State
	runID           string
	startedAt       time.Time
	lastCompletedAt time.Time
	lastSummary     string
	lastError       string
}

func NewStatus() *Status {
	return &Status{state: StateIdle}
}

// TryStart transitions to Running and returns a new run ID. It reports
// false without transitioning when a run is already in flight.
func (s *Status) TryStart() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return "", false
	}

	s.state = StateRunning
	s.runID = uuid.New().String()
	s.startedAt = time.Now()
	s.lastError = ""
	return s.runID, true
}

// Finish records a completed run. It always clears Running so a failure in
// the caller cannot wedge the engine in a permanently "processing" state.
func (s *Status) Finish(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.lastCompletedAt = time.Now()
	s.lastSummary = summary
}

// Fail records a failed run and clears Running.
func (s *Status) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateFailed
	s.lastCompletedAt = time.Now()
	if err != nil {
		s.lastError = err.Error()
	}
}

// Snapshot is a point-in-time copy of the engine state for the status
// endpoint.
type Snapshot struct {
	State           State     `json:"state"`
	IsProcessing    bool      `json:"is_processing"`
	RunID           string    `json:"run_id,omitempty"`
	StartedAt       time.Time `json:"started_at,omitempty"`
	LastCompletedAt time.Time `json:"last_completed_at,omitempty"`
	LastSummary     string    `json:"last_summary,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
}

func (s *Status) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		State:           s.state,
		IsProcessing:    s.state == StateRunning,
		RunID:           s.runID,
		StartedAt:       s.startedAt,
		LastCompletedAt: s.lastCompletedAt,
		LastSummary:     s.lastSummary,
		LastError:       s.lastError,
	}
}
