package harness

import (
	"log/slog"

	"github.com/roach88/semmeta/internal/ir"
)

// LogLine is a captured log record, reduced to what traces compare.
type LogLine struct {
	Level   slog.Level `json:"level"`
	Message string     `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every emitted change in order.
	Trace []ir.Change `json:"trace"`

	// Logs contains every log line the engine wrote, in order.
	Logs []LogLine `json:"logs"`

	// Records is the final record set, sorted by item name.
	Records []ir.Metadata `json:"records"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []ir.Change{},
		Logs:    []LogLine{},
		Records: []ir.Metadata{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Record returns the final record for item.
func (r *Result) Record(item string) (ir.Metadata, bool) {
	for _, md := range r.Records {
		if md.UID.ItemName == item {
			return md, true
		}
	}
	return ir.Metadata{}, false
}
