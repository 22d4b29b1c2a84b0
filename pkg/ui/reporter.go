package ui

import (
	"sync"

	"bedownloader/pkg/models"
)

// Reporter receives progress events from a run. Implementations must be
// safe for use from the run goroutine while the UI reads concurrently.
type Reporter interface {
	// StatusUpdate describes what the run is doing right now
	StatusUpdate(message string)
	// CompletedUpdate carries the latest project counters
	CompletedUpdate(counters models.Counters)
	// TaskFinished carries the final status line of a run
	TaskFinished(status string)
	// ReadyForInput signals that a new run may be started
	ReadyForInput()
}

// NopReporter drops every event
type NopReporter struct{}

func (NopReporter) StatusUpdate(string)             {}
func (NopReporter) CompletedUpdate(models.Counters) {}
func (NopReporter) TaskFinished(string)             {}
func (NopReporter) ReadyForInput()                  {}

// MultiReporter fans events out to several reporters
type MultiReporter []Reporter

func (m MultiReporter) StatusUpdate(message string) {
	for _, r := range m {
		r.StatusUpdate(message)
	}
}

func (m MultiReporter) CompletedUpdate(counters models.Counters) {
	for _, r := range m {
		r.CompletedUpdate(counters)
	}
}

func (m MultiReporter) TaskFinished(status string) {
	for _, r := range m {
		r.TaskFinished(status)
	}
}

func (m MultiReporter) ReadyForInput() {
	for _, r := range m {
		r.ReadyForInput()
	}
}

// Event is one recorded reporter call
type Event struct {
	Kind     string
	Message  string
	Counters models.Counters
}

// Event kinds
const (
	EventStatus    = "status"
	EventCompleted = "completed"
	EventFinished  = "finished"
	EventReady     = "ready"
)

// RecordingReporter keeps every event in memory
type RecordingReporter struct {
	mu     sync.Mutex
	events []Event
}

// NewRecordingReporter creates an empty recorder
func NewRecordingReporter() *RecordingReporter {
	return &RecordingReporter{}
}

func (r *RecordingReporter) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *RecordingReporter) StatusUpdate(message string) {
	r.add(Event{Kind: EventStatus, Message: message})
}

func (r *RecordingReporter) CompletedUpdate(counters models.Counters) {
	r.add(Event{Kind: EventCompleted, Counters: counters})
}

func (r *RecordingReporter) TaskFinished(status string) {
	r.add(Event{Kind: EventFinished, Message: status})
}

func (r *RecordingReporter) ReadyForInput() {
	r.add(Event{Kind: EventReady})
}

// Events returns a copy of the recorded events
func (r *RecordingReporter) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// EventsOf returns the recorded events of one kind
func (r *RecordingReporter) EventsOf(kind string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// LastCounters returns the counters of the most recent CompletedUpdate
func (r *RecordingReporter) LastCounters() (models.Counters, bool) {
	completed := r.EventsOf(EventCompleted)
	if len(completed) == 0 {
		return models.Counters{}, false
	}
	return completed[len(completed)-1].Counters, true
}
