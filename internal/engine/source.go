package engine

import (
	"github.com/google/uuid"
)

// SourceGenerator produces the source identifier the engine passes to
// listeners. Implemented by UUIDv7Generator (production) and
// FixedSource (tests).
type SourceGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 source identifiers.
//
// Uses github.com/google/uuid package for RFC 4122 compliant UUIDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedSource always returns the same identifier. Used for deterministic
// traces and golden files.
type FixedSource string

// Generate returns the fixed identifier.
func (s FixedSource) Generate() string {
	return string(s)
}
