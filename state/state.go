// Package state tracks the position of the current ingestion run for status reporting.
package state

import (
	"fmt"
	"sync"
	"time"

	"newsradar/types"
)

// State represents the ingestion state machine
type State string

const (
	StateIdle             State = "idle"
	StateFetching         State = "fetching"
	StateRawPersist       State = "raw_persist"
	StateEmbedding        State = "embedding"
	StateProcessedPersist State = "processed_persist"
	StateIndexing         State = "indexing"
	StateComplete         State = "complete"
	StateError            State = "error"
)

const defaultMaxLogs = 50

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Status is the JSON response for GET /api/status
type Status struct {
	State      State            `json:"state"`
	Running    bool             `json:"running"`
	RunID      string           `json:"run_id,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	Logs       []LogEntry       `json:"logs"`
	LastResult *types.RunResult `json:"last_result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Tracker holds the run state with thread-safe access
type Tracker struct {
	mu sync.RWMutex

	currentState State
	running      bool
	runID        string
	startedAt    time.Time
	lastResult   *types.RunResult
	lastErr      error

	// Logs (ring buffer)
	logs    []LogEntry
	maxLogs int

	now func() time.Time
}

// NewTracker creates an idle tracker that keeps the last 50 log entries
func NewTracker() *Tracker {
	return &Tracker{
		currentState: StateIdle,
		logs:         make([]LogEntry, 0, defaultMaxLogs),
		maxLogs:      defaultMaxLogs,
		now:          time.Now,
	}
}

// Start marks a run as in progress
func (t *Tracker) Start(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = true
	t.runID = runID
	t.startedAt = t.now()
	t.lastErr = nil
	t.currentState = StateFetching
	t.appendLog(fmt.Sprintf("Run %s started", runID))
}

// SetState moves the current run to a new stage
func (t *Tracker) SetState(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentState = state
	t.appendLog(fmt.Sprintf("Stage: %s", state))
}

// GetState gets the current state
func (t *Tracker) GetState() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentState
}

// AddLog adds a log entry
func (t *Tracker) AddLog(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendLog(message)
}

// Finish records the outcome of the current run
func (t *Tracker) Finish(result *types.RunResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.lastResult = result
	if result != nil && result.Status == types.StatusSuccess {
		t.currentState = StateComplete
		t.lastErr = nil
	} else {
		t.currentState = StateError
	}
	if result != nil {
		t.appendLog(fmt.Sprintf("Run %s finished: %s (%s)", result.RunID, result.Status, result.Message))
	}
}

// Fail ends the current run with an error that produced no result
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.currentState = StateError
	t.lastErr = err
	t.appendLog(fmt.Sprintf("Error: %v", err))
}

// Busy reports whether a run is in progress
func (t *Tracker) Busy() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// Snapshot returns a copy of the current status
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Status{
		State:      t.currentState,
		Running:    t.running,
		RunID:      t.runID,
		Logs:       append([]LogEntry{}, t.logs...),
		LastResult: t.lastResult,
	}
	if !t.startedAt.IsZero() {
		started := t.startedAt
		s.StartedAt = &started
	}
	if t.lastErr != nil {
		s.Error = t.lastErr.Error()
	}
	return s
}

// appendLog must be called with the lock held
func (t *Tracker) appendLog(message string) {
	t.logs = append(t.logs, LogEntry{Timestamp: t.now(), Message: message})
	if len(t.logs) > t.maxLogs {
		t.logs = t.logs[len(t.logs)-t.maxLogs:]
	}
}
