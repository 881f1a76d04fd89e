package telemetry

import (
	"context"
	"strings"
	"sync"
)

// Recorder receives named domain events. Components take a Recorder instead of
// logging directly so tests can assert on what was emitted.
type Recorder interface {
	Event(ctx context.Context, name string, fields map[string]any)
}

// LogRecorder writes events through the process logger. Event names ending in
// ".failed" or containing "fallback" are logged at warn level.
type LogRecorder struct{}

// Event implements Recorder.
func (LogRecorder) Event(ctx context.Context, name string, fields map[string]any) {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if reqID := RequestIDFromContext(ctx); reqID != "" {
		out["request_id"] = reqID
	}
	if strings.HasSuffix(name, ".failed") || strings.Contains(name, "fallback") {
		Warn(name, out)
		return
	}
	Info(name, out)
}

// NopRecorder discards events.
type NopRecorder struct{}

// Event implements Recorder.
func (NopRecorder) Event(context.Context, string, map[string]any) {}

// RecordedEvent is one event captured by MemoryRecorder.
type RecordedEvent struct {
	Name   string
	Fields map[string]any
}

// MemoryRecorder keeps events in memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// Event implements Recorder.
func (m *MemoryRecorder) Event(_ context.Context, name string, fields map[string]any) {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	m.mu.Lock()
	m.events = append(m.events, RecordedEvent{Name: name, Fields: copied})
	m.mu.Unlock()
}

// Events returns a snapshot of recorded events.
func (m *MemoryRecorder) Events() []RecordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedEvent(nil), m.events...)
}

// Named returns recorded events with the given name.
func (m *MemoryRecorder) Named(name string) []RecordedEvent {
	var out []RecordedEvent
	for _, e := range m.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// OrNop returns r, or a NopRecorder when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return NopRecorder{}
	}
	return r
}
