// Package diagnostics keeps a small in-memory log of recent failed database
// queries so support can inspect them without trawling full logs. The log is
// an explicit bounded ring buffer handed to repositories, not a process-wide
// singleton, so tests can own their own instance.
package diagnostics

import (
	"sync"
	"time"
)

const defaultCapacity = 20

// QueryContext identifies the operation that failed.
type QueryContext struct {
	Operation string         `json:"operation"`
	Table     string         `json:"table,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
}

// Entry is one recorded failure, newest first in Recent.
type Entry struct {
	Context   QueryContext `json:"context"`
	Error     string       `json:"error"`
	Timestamp time.Time    `json:"timestamp"`
}

// ErrorLog is a fixed-capacity buffer of recent query errors. The zero value
// is not usable; construct with NewErrorLog.
type ErrorLog struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
	now     func() time.Time
}

// NewErrorLog returns a log bounded to capacity entries; capacity <= 0 uses
// the default of 20.
func NewErrorLog(capacity int) *ErrorLog {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &ErrorLog{cap: capacity, now: time.Now}
}

// Record prepends a failure, evicting the oldest entry once full. A nil err
// is ignored.
func (l *ErrorLog) Record(ctx QueryContext, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := Entry{Context: ctx, Error: err.Error(), Timestamp: l.now()}
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Recent returns a copy of the buffered entries, newest first.
func (l *ErrorLog) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the buffer.
func (l *ErrorLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
