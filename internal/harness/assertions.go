package harness

import (
	"fmt"
	"maps"
	"strings"

	"github.com/roach88/semmeta/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []ir.Change // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, c := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s\n", c.Seq, c.Kind, c.ItemName, formatRecord(c.Record()))
		}
	}

	return buf.String()
}

func assertRecord(result *Result, a Assertion) error {
	md, ok := result.Record(a.Item)
	if !ok {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("record for %s with value %s", a.Item, a.Value),
			Actual:   "no record",
			Trace:    result.Trace,
		}
	}

	if md.Value != a.Value {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s value %s", a.Item, a.Value),
			Actual:   fmt.Sprintf("%s value %s", a.Item, md.Value),
			Trace:    result.Trace,
		}
	}

	if a.Configuration != nil && !maps.Equal(md.Configuration, a.Configuration) {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s configuration %s", a.Item, formatConfig(a.Configuration)),
			Actual:   fmt.Sprintf("%s configuration %s", a.Item, formatConfig(md.Configuration)),
			Trace:    result.Trace,
		}
	}

	return nil
}

func assertNoRecord(result *Result, a Assertion) error {
	if md, ok := result.Record(a.Item); ok {
		return &AssertionError{
			Type:     AssertNoRecord,
			Expected: fmt.Sprintf("no record for %s", a.Item),
			Actual:   formatRecord(md),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertChangeCount checks the trace holds exactly the specified number of
// changes, optionally of one kind.
func assertChangeCount(result *Result, a Assertion) error {
	count := 0
	for _, c := range result.Trace {
		if a.Kind == "" || string(c.Kind) == a.Kind {
			count++
		}
	}

	if count != *a.Count {
		what := "changes"
		if a.Kind != "" {
			what = a.Kind + " changes"
		}
		return &AssertionError{
			Type:     AssertChangeCount,
			Expected: fmt.Sprintf("%d %s", *a.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertLogContains(result *Result, a Assertion) error {
	level, err := parseLevel(a.Level)
	if err != nil {
		return err
	}
	for _, line := range result.Logs {
		if a.Level != "" && line.Level != level {
			continue
		}
		if strings.Contains(line.Message, a.Message) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("log line containing %q", a.Message),
		Actual:   formatLogs(result.Logs),
	}
}

func assertNoLogs(result *Result, a Assertion) error {
	level, err := parseLevel(a.Level)
	if err != nil {
		return err
	}
	var found []LogLine
	for _, line := range result.Logs {
		if line.Level >= level {
			found = append(found, line)
		}
	}
	if len(found) > 0 {
		return &AssertionError{
			Type:     AssertNoLogs,
			Expected: fmt.Sprintf("no log lines at %s or above", level),
			Actual:   formatLogs(found),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRecord:
			err = assertRecord(result, assertion)
		case AssertNoRecord:
			err = assertNoRecord(result, assertion)
		case AssertChangeCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: change_count requires count", i)
			} else {
				err = assertChangeCount(result, assertion)
			}
		case AssertLogContains:
			err = assertLogContains(result, assertion)
		case AssertNoLogs:
			err = assertNoLogs(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func formatRecord(md ir.Metadata) string {
	return md.Value + " " + formatConfig(md.Configuration)
}

// formatConfig renders a configuration with sorted keys.
func formatConfig(cfg map[string]string) string {
	data, err := ir.MarshalCanonical(cfg)
	if err != nil {
		return fmt.Sprintf("%v", cfg)
	}
	return string(data)
}

func formatLogs(lines []LogLine) string {
	if len(lines) == 0 {
		return "no log lines"
	}
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprintf("%s %q", line.Level, line.Message)
	}
	return strings.Join(parts, "; ")
}
