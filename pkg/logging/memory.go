package logging

import (
	"context"
	"sync"
)

// Entry is one event captured by a MemoryLogger
type Entry struct {
	Level   Level
	Message string
	Err     error
	Fields  Fields
}

// MemoryLogger records events in memory so tests can assert on what
// components emitted without touching the filesystem.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
	fields  Fields
}

// NewMemoryLogger creates a new in-memory logger
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Debug records a debug event
func (l *MemoryLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.record(DebugLevel, msg, nil, fields)
}

// Info records an info event
func (l *MemoryLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.record(InfoLevel, msg, nil, fields)
}

// Warn records a warning event
func (l *MemoryLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.record(WarnLevel, msg, nil, fields)
}

// Error records an error event
func (l *MemoryLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.record(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger whose events carry additional base fields.
// Recorded entries land in the parent's buffer.
func (l *MemoryLogger) WithFields(fields Fields) Logger {
	return &derivedMemoryLogger{
		parent: l,
		fields: mergeFields(l.fields, fields),
	}
}

// Close does nothing
func (l *MemoryLogger) Close() error {
	return nil
}

// Entries returns a snapshot of the recorded events
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// EntriesAt returns the recorded events at one level
func (l *MemoryLogger) EntriesAt(level Level) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any recorded message equals msg
func (l *MemoryLogger) Contains(msg string) bool {
	for _, e := range l.Entries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// Reset discards all recorded events
func (l *MemoryLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *MemoryLogger) record(level Level, msg string, err error, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Level:   level,
		Message: msg,
		Err:     err,
		Fields:  mergeFields(l.fields, fields),
	})
}

// derivedMemoryLogger forwards to its parent with extra base fields
type derivedMemoryLogger struct {
	parent *MemoryLogger
	fields Fields
}

func (l *derivedMemoryLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.parent.record(DebugLevel, msg, nil, mergeFields(l.fields, fields))
}

func (l *derivedMemoryLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.parent.record(InfoLevel, msg, nil, mergeFields(l.fields, fields))
}

func (l *derivedMemoryLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.parent.record(WarnLevel, msg, nil, mergeFields(l.fields, fields))
}

func (l *derivedMemoryLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.parent.record(ErrorLevel, msg, err, mergeFields(l.fields, fields))
}

func (l *derivedMemoryLogger) WithFields(fields Fields) Logger {
	return &derivedMemoryLogger{
		parent: l.parent,
		fields: mergeFields(l.fields, fields),
	}
}

func (l *derivedMemoryLogger) Close() error {
	return nil
}
