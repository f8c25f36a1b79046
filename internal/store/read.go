package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/semmeta/internal/ir"
)

const changeColumns = `seq, id, run, source, kind, item_name, old_record, new_record`

// ReadChanges returns every journaled change in seq order.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadChanges(ctx context.Context) ([]ir.Change, error) {
	return s.queryChanges(ctx, `
		SELECT `+changeColumns+`
		FROM changes
		ORDER BY seq ASC
	`)
}

// ReadChangesSince returns changes with seq greater than afterSeq, in order.
func (s *Store) ReadChangesSince(ctx context.Context, afterSeq int64) ([]ir.Change, error) {
	return s.queryChanges(ctx, `
		SELECT `+changeColumns+`
		FROM changes
		WHERE seq > ?
		ORDER BY seq ASC
	`, afterSeq)
}

// ReadItemChanges returns the changes for one item in seq order.
func (s *Store) ReadItemChanges(ctx context.Context, itemName string) ([]ir.Change, error) {
	return s.queryChanges(ctx, `
		SELECT `+changeColumns+`
		FROM changes
		WHERE item_name = ?
		ORDER BY seq ASC
	`, itemName)
}

// ReadRunChanges returns the changes one run wrote, in seq order.
func (s *Store) ReadRunChanges(ctx context.Context, run string) ([]ir.Change, error) {
	return s.queryChanges(ctx, `
		SELECT `+changeColumns+`
		FROM changes
		WHERE run = ?
		ORDER BY seq ASC
	`, run)
}

// RunInfo summarizes one journal run.
type RunInfo struct {
	Run      string `json:"run"`
	Source   string `json:"source"`
	FirstSeq int64  `json:"first_seq"`
	LastSeq  int64  `json:"last_seq"`
	Changes  int    `json:"changes"`
}

// Runs lists the journal's runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run, MIN(source), MIN(seq), MAX(seq), COUNT(*)
		FROM changes
		GROUP BY run
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.Run, &r.Source, &r.FirstSeq, &r.LastSeq, &r.Changes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// runAt returns the run that wrote the last change at or before seq. A seq
// of 0 or less means the last change overall. ok is false for an empty
// range.
func (s *Store) runAt(ctx context.Context, seq int64) (run string, ok bool, err error) {
	query := `SELECT run FROM changes ORDER BY seq DESC LIMIT 1`
	args := []any{}
	if seq > 0 {
		query = `SELECT run FROM changes WHERE seq <= ? ORDER BY seq DESC LIMIT 1`
		args = append(args, seq)
	}

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&run)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find run at seq %d: %w", seq, err)
	}
	return run, true, nil
}

// LastSeq returns the highest journaled seq, or 0 for an empty journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM changes`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

// CountChanges returns the number of journaled changes per kind.
func (s *Store) CountChanges(ctx context.Context) (map[ir.ChangeKind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM changes
		GROUP BY kind
		ORDER BY kind ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("count changes: %w", err)
	}
	defer rows.Close()

	counts := make(map[ir.ChangeKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan change count: %w", err)
		}
		counts[ir.ChangeKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change counts: %w", err)
	}
	return counts, nil
}

func (s *Store) queryChanges(ctx context.Context, query string, args ...any) ([]ir.Change, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	changes := []ir.Change{}
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}

	return changes, nil
}

// scanChange scans one row selected with changeColumns.
func scanChange(rows *sql.Rows) (ir.Change, error) {
	var (
		c       ir.Change
		kind    string
		oldJSON sql.NullString
		newJSON sql.NullString
	)
	if err := rows.Scan(&c.Seq, &c.ID, &c.Run, &c.Source, &kind, &c.ItemName, &oldJSON, &newJSON); err != nil {
		return c, fmt.Errorf("scan change: %w", err)
	}
	c.Kind = ir.ChangeKind(kind)

	var err error
	if c.Old, err = unmarshalRecord(oldJSON); err != nil {
		return c, fmt.Errorf("change %d: %w", c.Seq, err)
	}
	if c.New, err = unmarshalRecord(newJSON); err != nil {
		return c, fmt.Errorf("change %d: %w", c.Seq, err)
	}
	return c, nil
}
