package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/semmeta/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrTagIDEmpty       = "E201" // tag id is required
	ErrTagDuplicate     = "E202" // tag id declared twice
	ErrTagUnknownParent = "E203" // parent is neither a category nor a declared tag
	ErrTagRedefinedRoot = "E204" // tag id shadows a category root
	ErrTagInvalidID     = "E205" // tag id has characters outside [A-Za-z0-9]
	ErrTagParentCycle   = "E206" // parent chain loops back on itself
)

// ValidationError represents a taxonomy validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Underscore is the UID separator, so ids may not contain it.
var tagIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// ValidateTaxonomy validates compiled tag specs.
// Returns all errors found (does not fail-fast).
func ValidateTaxonomy(specs []ir.TagSpec) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(specs))
	for i, spec := range specs {
		field := fmt.Sprintf("tags[%d]", i)
		id := strings.TrimSpace(spec.ID)

		// E201: id is required
		if id == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "tag id is required and must be non-empty",
				Code:    ErrTagIDEmpty,
			})
			continue
		}
		field = "tags." + id

		// E204: category roots are implicit
		if ir.IsCategory(id) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is a category root and cannot be redefined", id),
				Code:    ErrTagRedefinedRoot,
			})
			continue
		}

		// E205: ids become UID path segments
		if !tagIDPattern.MatchString(id) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid tag id %q: must start with a letter and contain only letters and digits", id),
				Code:    ErrTagInvalidID,
			})
		}

		// E202: unique ids
		if declared[id] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate tag id %q", id),
				Code:    ErrTagDuplicate,
			})
			continue
		}
		declared[id] = true
	}

	// E203: every parent resolves
	for _, spec := range specs {
		if spec.ID == "" || ir.IsCategory(spec.ID) {
			continue
		}
		if !ir.IsCategory(spec.Parent) && !declared[spec.Parent] {
			errs = append(errs, ValidationError{
				Field:   "tags." + spec.ID + ".parent",
				Message: fmt.Sprintf("unknown parent %q", spec.Parent),
				Code:    ErrTagUnknownParent,
			})
		}
	}

	// E206: parent chains terminate at a category
	for _, cycle := range AnalyzeParentCycles(specs) {
		errs = append(errs, ValidationError{
			Field:   "tags." + cycle[0] + ".parent",
			Message: fmt.Sprintf("parent cycle: %s", strings.Join(cycle, " -> ")),
			Code:    ErrTagParentCycle,
		})
	}

	return errs
}
