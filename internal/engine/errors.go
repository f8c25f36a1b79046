package engine

import (
	"errors"
	"fmt"
	"strings"
)

// RuntimeError represents an error detected while processing an item event.
//
// Runtime errors are logged, never returned from Added, Updated or Removed:
//   - Cycle detection: a group member is also one of its ancestors
//   - Identity mismatch: Updated called with two different item names
//   - Unknown event: the Run loop received an event of unknown type
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Item is the affected item name.
	Item string

	// Group is the group whose member list produced the error.
	Group string

	// Path is the ancestor path at the point of detection, outermost first.
	Path []string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCycleDetected indicates a member is also one of its ancestors.
	ErrCodeCycleDetected RuntimeErrorCode = "CYCLE_DETECTED"

	// ErrCodeIdentityMismatch indicates an update changed the item name.
	ErrCodeIdentityMismatch RuntimeErrorCode = "IDENTITY_MISMATCH"

	// ErrCodeUnknownEvent indicates the Run loop got an unknown event type.
	ErrCodeUnknownEvent RuntimeErrorCode = "UNKNOWN_EVENT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, strings.Join(e.Path, " > "))
	}
	if e.Item != "" {
		return fmt.Sprintf("%s: %s (item=%s)", e.Code, e.Message, e.Item)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleError returns true if the error is a cycle detection error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCycleDetected
	}
	return false
}

// IsIdentityMismatch returns true if the error is an identity mismatch.
// Uses errors.As to handle wrapped errors.
func IsIdentityMismatch(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeIdentityMismatch
	}
	return false
}

// NewCycleError creates a RuntimeError for a recursive group membership.
// member is the re-entered item, group is the group that lists it.
func NewCycleError(member, group string, path []string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCycleDetected,
		Message: CycleMessage(member, group),
		Item:    member,
		Group:   group,
		Path:    path,
	}
}

// NewIdentityMismatchError creates a RuntimeError for an update whose old
// and new snapshots name different items.
func NewIdentityMismatchError(oldName, newName string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeIdentityMismatch,
		Message: fmt.Sprintf("updated item %q does not match previous item %q", newName, oldName),
		Item:    newName,
	}
}
