package models

import (
	"sync"
	"sync/atomic"
)

// TaskState is the mutable state of a single download run. Counters and
// history are guarded by a mutex so the UI can snapshot them while the run
// goroutine updates them. The abort flag is atomic and may be set from any
// goroutine.
type TaskState struct {
	mu       sync.Mutex
	projects []ProjectLink
	counters Counters
	history  []string
	seen     map[string]struct{}
	aborted  atomic.Bool
}

// NewTaskState returns an empty state
func NewTaskState() *TaskState {
	return &TaskState{seen: make(map[string]struct{})}
}

// Reset clears everything, including the abort flag
func (s *TaskState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = nil
	s.counters = Counters{}
	s.history = nil
	s.seen = make(map[string]struct{})
	s.aborted.Store(false)
}

// Abort marks the run as aborted
func (s *TaskState) Abort() {
	s.aborted.Store(true)
}

// IsAborted reports whether the run was aborted
func (s *TaskState) IsAborted() bool {
	return s.aborted.Load()
}

// SetProjects replaces the project list
func (s *TaskState) SetProjects(projects []ProjectLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
}

// Projects returns a copy of the project list
func (s *TaskState) Projects() []ProjectLink {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ProjectLink, len(s.projects))
	copy(out, s.projects)
	return out
}

// Counters returns a snapshot of the counters
func (s *TaskState) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// UpdateCounters applies fn under the lock and returns the new snapshot
func (s *TaskState) UpdateCounters(fn func(c *Counters)) Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.counters)
	return s.counters
}

// SetHistory replaces the in-memory history
func (s *TaskState) SetHistory(urls []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = make([]string, 0, len(urls))
	s.seen = make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, ok := s.seen[u]; ok {
			continue
		}
		s.seen[u] = struct{}{}
		s.history = append(s.history, u)
	}
}

// InHistory reports whether url was downloaded in an earlier run
func (s *TaskState) InHistory(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[url]
	return ok
}

// AddToHistory records url in memory. It returns false if it was present.
func (s *TaskState) AddToHistory(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	s.history = append(s.history, url)
	return true
}

// History returns a copy of the in-memory history
func (s *TaskState) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}
