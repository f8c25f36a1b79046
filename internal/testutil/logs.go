package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogEntry is one captured log record.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogRecorder is a slog.Handler that captures records for assertions.
//
// Handlers derived with WithAttrs/WithGroup share the parent's entries, so a
// logger built from Logger() can be passed anywhere and still be inspected.
//
// Thread-safety: LogRecorder is safe for concurrent use.
type LogRecorder struct {
	state *logState
	attrs []slog.Attr // keys already group-qualified
	group string
}

type logState struct {
	mu      sync.Mutex
	level   slog.Level
	entries []LogEntry
}

// NewLogRecorder returns a recorder capturing records at level and above.
func NewLogRecorder(level slog.Level) *LogRecorder {
	return &LogRecorder{state: &logState{level: level}}
}

// Logger returns a logger writing to the recorder.
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.state.level
}

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]string, len(r.attrs)+rec.NumAttrs())
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.String()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[r.key(a.Key)] = a.Value.String()
		return true
	})

	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.entries = append(r.state.entries, LogEntry{
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *r
	next.attrs = append([]slog.Attr{}, r.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: r.key(a.Key), Value: a.Value})
	}
	return &next
}

// WithGroup implements slog.Handler.
func (r *LogRecorder) WithGroup(name string) slog.Handler {
	next := *r
	next.group = r.key(name)
	return &next
}

func (r *LogRecorder) key(k string) string {
	if r.group == "" {
		return k
	}
	return r.group + "." + k
}

// Entries returns a copy of captured records.
func (r *LogRecorder) Entries() []LogEntry {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	out := make([]LogEntry, len(r.state.entries))
	copy(out, r.state.entries)
	return out
}

// Messages returns the messages of captured records at exactly level.
func (r *LogRecorder) Messages(level slog.Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any captured message contains substr.
func (r *LogRecorder) Contains(substr string) bool {
	for _, e := range r.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Len returns the number of captured records.
func (r *LogRecorder) Len() int {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return len(r.state.entries)
}

// Reset discards captured records.
func (r *LogRecorder) Reset() {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.entries = nil
}
