package store

import (
	"context"
	"fmt"

	"github.com/roach88/semmeta/internal/ir"
)

// WriteChange appends a change to the journal.
//
// An empty ID is filled with ir.ChangeID. Uses ON CONFLICT(id) DO NOTHING
// for idempotency - rewriting the same change is silently ignored. A
// different change reusing a seq is an error.
//
// Records are serialized to canonical JSON per RFC 8785.
func (s *Store) WriteChange(ctx context.Context, c ir.Change) (ir.Change, error) {
	if err := validateChange(c); err != nil {
		return c, fmt.Errorf("write change: %w", err)
	}

	if c.ID == "" {
		id, err := ir.ChangeID(c)
		if err != nil {
			return c, fmt.Errorf("write change: %w", err)
		}
		c.ID = id
	}

	oldJSON, err := marshalRecord(c.Old)
	if err != nil {
		return c, fmt.Errorf("write change: %w", err)
	}
	newJSON, err := marshalRecord(c.New)
	if err != nil {
		return c, fmt.Errorf("write change: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO changes
		(seq, id, run, source, kind, item_name, old_record, new_record, journal_version, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		c.Seq,
		c.ID,
		c.Run,
		c.Source,
		string(c.Kind),
		c.ItemName,
		oldJSON,
		newJSON,
		ir.JournalVersion,
		ir.EngineVersion,
	)
	if err != nil {
		return c, fmt.Errorf("write change: %w", err)
	}

	return c, nil
}

// validateChange checks the old/new shape matches the kind.
func validateChange(c ir.Change) error {
	if c.Seq <= 0 {
		return fmt.Errorf("seq must be positive, got %d", c.Seq)
	}
	if c.ItemName == "" {
		return fmt.Errorf("item_name is required")
	}
	switch c.Kind {
	case ir.ChangeAdded:
		if c.Old != nil || c.New == nil {
			return fmt.Errorf("added change must carry only a new record")
		}
	case ir.ChangeUpdated:
		if c.Old == nil || c.New == nil {
			return fmt.Errorf("updated change must carry old and new records")
		}
	case ir.ChangeRemoved:
		if c.Old == nil || c.New != nil {
			return fmt.Errorf("removed change must carry only an old record")
		}
	default:
		return fmt.Errorf("unknown change kind %q", c.Kind)
	}
	return nil
}
