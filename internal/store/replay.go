package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/semmeta/internal/ir"
)

// Replay folds the latest run into the record set it describes, sorted by
// item name. The result equals the engine's GetAll at the time of the last
// journaled change.
func (s *Store) Replay(ctx context.Context) ([]ir.Metadata, error) {
	return s.ReplayUntil(ctx, 0)
}

// ReplayUntil folds the run that wrote the last change at or before seq,
// stopping at seq. Each run starts from an empty engine, so earlier runs
// never contribute. A seq of 0 or less folds the latest run to its end.
func (s *Store) ReplayUntil(ctx context.Context, seq int64) ([]ir.Metadata, error) {
	run, ok, err := s.runAt(ctx, seq)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if !ok {
		return []ir.Metadata{}, nil
	}
	return s.ReplayRun(ctx, run, seq)
}

// ReplayRun folds the changes run wrote up to and including seq. A seq of 0
// or less folds the whole run.
func (s *Store) ReplayRun(ctx context.Context, run string, seq int64) ([]ir.Metadata, error) {
	changes, err := s.ReadRunChanges(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("replay run %q: %w", run, err)
	}
	if seq > 0 {
		changes = slices.DeleteFunc(changes, func(c ir.Change) bool { return c.Seq > seq })
	}

	records, err := Fold(changes)
	if err != nil {
		return nil, fmt.Errorf("replay run %q: %w", run, err)
	}
	return records, nil
}

// Fold applies changes in order and returns the resulting records sorted by
// item name. A change that does not fit the current state (an added record
// that already exists, an update or removal of a missing one) is an error.
func Fold(changes []ir.Change) ([]ir.Metadata, error) {
	state := make(map[string]ir.Metadata)
	for _, c := range changes {
		_, exists := state[c.ItemName]
		switch c.Kind {
		case ir.ChangeAdded:
			if exists {
				return nil, fmt.Errorf("seq %d: added %q but a record already exists", c.Seq, c.ItemName)
			}
			state[c.ItemName] = c.New.Clone()
		case ir.ChangeUpdated:
			if !exists {
				return nil, fmt.Errorf("seq %d: updated %q but no record exists", c.Seq, c.ItemName)
			}
			state[c.ItemName] = c.New.Clone()
		case ir.ChangeRemoved:
			if !exists {
				return nil, fmt.Errorf("seq %d: removed %q but no record exists", c.Seq, c.ItemName)
			}
			delete(state, c.ItemName)
		default:
			return nil, fmt.Errorf("seq %d: unknown change kind %q", c.Seq, c.Kind)
		}
	}

	out := make([]ir.Metadata, 0, len(state))
	for _, md := range state {
		out = append(out, md)
	}
	slices.SortFunc(out, func(a, b ir.Metadata) int {
		return strings.Compare(a.UID.ItemName, b.UID.ItemName)
	})
	return out, nil
}
