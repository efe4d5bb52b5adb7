// Package runstate remembers the outcome of past runs between
// invocations.
package runstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Status is the outcome of a run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Run records one pipeline run.
type Run struct {
	RunID      string    `json:"run_id"`
	ProjectID  string    `json:"project"`
	Sink       string    `json:"sink"`
	Status     Status    `json:"status"`
	Stage      string    `json:"stage,omitempty"`      // failed stage
	ErrorKind  string    `json:"error_kind,omitempty"` // e.g. "transport failure"
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Extracted  int       `json:"extracted"`
	Loaded     int       `json:"loaded"`
	Dropped    int       `json:"dropped"`
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// persistedState is the JSON representation of state for disk storage
type persistedState struct {
	LastRun     *Run `json:"last_run,omitempty"`
	LastSuccess *Run `json:"last_success,omitempty"`
	Runs        int  `json:"runs"`
	Failures    int  `json:"failures"`
}

// State holds run records with thread-safe access and persistence
type State struct {
	mu       sync.RWMutex
	current  persistedState
	filePath string // empty disables persistence
}

// Open creates a State backed by filePath, restoring any previous
// records. A missing file starts empty.
func Open(filePath string) (*State, error) {
	s := &State{
		filePath: filePath,
	}

	if filePath != "" {
		if err := s.restore(); err != nil && !os.IsNotExist(err) {
			return s, err
		}
	}

	return s, nil
}

// Record stores run as the latest run and, when it succeeded, as the
// latest success.
func (s *State) Record(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := run
	s.current.LastRun = &r
	s.current.Runs++
	if run.Status == StatusOK {
		s.current.LastSuccess = &r
	} else {
		s.current.Failures++
	}

	return s.persist()
}

// LastRun returns the most recent run.
func (s *State) LastRun() (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.LastRun == nil {
		return Run{}, false
	}
	return *s.current.LastRun, true
}

// LastSuccess returns the most recent successful run.
func (s *State) LastSuccess() (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.LastSuccess == nil {
		return Run{}, false
	}
	return *s.current.LastSuccess, true
}

// Counts returns the number of recorded runs and how many failed.
func (s *State) Counts() (runs, failures int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.Runs, s.current.Failures
}

// persist saves the state to disk
// Must be called with lock held
func (s *State) persist() error {
	if s.filePath == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	// Write atomically via temp file + rename
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, s.filePath)
}

// restore loads state from disk
func (s *State) restore() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ps
	return nil
}
