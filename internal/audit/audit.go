// Package audit keeps the process-wide, size-bounded record of analysis
// invocations. Entries are appended once per call, evicted oldest-first
// when the log is full, and never persisted.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// DefaultCapacity is the number of entries retained when none is configured.
const DefaultCapacity = 1000

// FailedInputs is the inputs summary recorded for failed invocations.
const FailedInputs = "Request failed"

// Emitter is the narrow interface analysis operations report through.
// Emit must not block on storage and never reports failure to the caller.
type Emitter interface {
	Emit(route, inputs, outputs string, success bool)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(route, inputs, outputs string, success bool)

// Emit implements Emitter.
func (f EmitterFunc) Emit(route, inputs, outputs string, success bool) { f(route, inputs, outputs, success) }

// Discard drops every entry.
var Discard Emitter = EmitterFunc(func(string, string, string, bool) {})

// Log is a ring buffer of audit entries safe for concurrent use.
type Log struct {
	mu    sync.RWMutex
	buf   []models.AuditEntry
	head  int // index of the oldest entry
	size  int
	subs  map[uint64]chan models.AuditEntry
	subID uint64
	now   func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// NewLog returns an empty log holding at most capacity entries.
func NewLog(capacity int, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{
		buf:  make([]models.AuditEntry, capacity),
		subs: make(map[uint64]chan models.AuditEntry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Emit implements Emitter.
func (l *Log) Emit(route, inputs, outputs string, success bool) {
	l.Append(route, inputs, outputs, success)
}

// Append records one entry, evicting the oldest when full, and fans it
// out to subscribers. Append and evict happen under one lock.
func (l *Log) Append(route, inputs, outputs string, success bool) models.AuditEntry {
	entry := models.AuditEntry{
		ID:             uuid.NewString(),
		Route:          route,
		At:             l.now().UTC(),
		InputsSummary:  inputs,
		OutputsSummary: outputs,
		Success:        success,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := len(l.buf)
	if l.size < capacity {
		l.buf[(l.head+l.size)%capacity] = entry
		l.size++
	} else {
		l.buf[l.head] = entry
		l.head = (l.head + 1) % capacity
	}

	for _, ch := range l.subs {
		select {
		case ch <- entry:
		default:
			// Slow subscriber; drop rather than block writers
		}
	}
	return entry
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (l *Log) Recent(n int) []models.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > l.size {
		n = l.size
	}
	out := make([]models.AuditEntry, n)
	capacity := len(l.buf)
	for i := 0; i < n; i++ {
		out[i] = l.buf[(l.head+l.size-1-i)%capacity]
	}
	return out
}

// All returns every retained entry, newest first.
func (l *Log) All() []models.AuditEntry { return l.Recent(0) }

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Cap returns the configured capacity.
func (l *Log) Cap() int { return len(l.buf) }

// Clear drops every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.buf)
	l.head, l.size = 0, 0
}

// Subscribe returns a channel receiving every entry appended from now on,
// and a cancel func that closes it. Entries are dropped when the channel
// buffer is full.
func (l *Log) Subscribe(buffer int) (<-chan models.AuditEntry, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan models.AuditEntry, buffer)

	l.mu.Lock()
	l.subID++
	id := l.subID
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}

// Export snapshots the log as a downloadable document.
func (l *Log) Export() models.AuditExport {
	logs := l.All()
	return models.AuditExport{
		ExportedAt:   l.now().UTC(),
		TotalEntries: len(logs),
		Logs:         logs,
	}
}
