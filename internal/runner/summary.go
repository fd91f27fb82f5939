// Package runner wires the four commands: check, update, delete and
// retrieve. Each command is a pipeline of read, validate, dispatch and
// report; the API client and the reporter are injected so tests can
// stub them.
package runner

import (
	"sync"
	"time"
)

// Summary accumulates per-row and per-batch outcomes across one run.
// Counters only ever increase. Delete workers update it concurrently,
// so every mutation takes the lock.
type Summary struct {
	mu        sync.Mutex
	valid     int
	invalid   int
	duplicate int
	completed int
	start     time.Time
}

// NewSummary starts the run clock.
func NewSummary() *Summary {
	return &Summary{start: time.Now()}
}

func (s *Summary) AddValid() {
	s.mu.Lock()
	s.valid++
	s.mu.Unlock()
}

func (s *Summary) AddInvalid() {
	s.mu.Lock()
	s.invalid++
	s.mu.Unlock()
}

func (s *Summary) AddDuplicate() {
	s.mu.Lock()
	s.duplicate++
	s.mu.Unlock()
}

func (s *Summary) AddCompleted(n int) {
	s.mu.Lock()
	s.completed += n
	s.mu.Unlock()
}

// Counts is a point-in-time copy of the summary counters. Processed is
// always Valid + Invalid + Duplicate.
type Counts struct {
	Processed int
	Valid     int
	Invalid   int
	Duplicate int
	Completed int
	Elapsed   time.Duration
}

// Snapshot returns a consistent copy of the counters.
func (s *Summary) Snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Processed: s.valid + s.invalid + s.duplicate,
		Valid:     s.valid,
		Invalid:   s.invalid,
		Duplicate: s.duplicate,
		Completed: s.completed,
		Elapsed:   time.Since(s.start),
	}
}
