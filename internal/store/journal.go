package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/semmeta/internal/ir"
)

// Journal records engine notifications in the store. It implements
// engine.Listener.
//
// Seq numbers continue from the journal's last seq, so a journal reopened
// across runs stays strictly increasing. Every change a Journal writes
// carries its run id, which scopes Replay to one engine's history. Listener
// methods cannot return errors: a failed write is logged and kept for Err.
//
// Thread-safety: Journal is safe for concurrent use.
type Journal struct {
	store  *Store
	ctx    context.Context
	clock  *ir.Clock
	run    string
	logger *slog.Logger

	mu  sync.Mutex
	err error
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalLogger sets the logger used for write failures.
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) {
		if l != nil {
			j.logger = l
		}
	}
}

// WithJournalRun sets the run id. Default: a fresh UUIDv7.
func WithJournalRun(run string) JournalOption {
	return func(j *Journal) {
		j.run = run
	}
}

// NewJournal returns a Journal appending to s. ctx bounds every write.
func NewJournal(ctx context.Context, s *Store, opts ...JournalOption) (*Journal, error) {
	last, err := s.LastSeq(ctx)
	if err != nil {
		return nil, err
	}

	j := &Journal{
		store:  s,
		ctx:    ctx,
		clock:  ir.NewClockAt(last),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.run == "" {
		j.run = uuid.Must(uuid.NewV7()).String()
	}
	return j, nil
}

func (j *Journal) Added(source string, md ir.Metadata) {
	j.write(source, ir.ChangeAdded, nil, &md)
}

func (j *Journal) Updated(source string, old, md ir.Metadata) {
	j.write(source, ir.ChangeUpdated, &old, &md)
}

func (j *Journal) Removed(source string, md ir.Metadata) {
	j.write(source, ir.ChangeRemoved, &md, nil)
}

func (j *Journal) write(source string, kind ir.ChangeKind, old, md *ir.Metadata) {
	c := ir.Change{
		Seq:    j.clock.Next(),
		Run:    j.run,
		Source: source,
		Kind:   kind,
		Old:    old,
		New:    md,
	}
	c.ItemName = c.Record().UID.ItemName

	if _, err := j.store.WriteChange(j.ctx, c); err != nil {
		j.logger.Error("journal write failed",
			"error", err,
			"seq", c.Seq,
			"kind", string(kind),
			"item", c.ItemName,
		)
		j.mu.Lock()
		if j.err == nil {
			j.err = err
		}
		j.mu.Unlock()
	}
}

// Run returns the id stamped on every change this journal writes.
func (j *Journal) Run() string {
	return j.run
}

// Seq returns the seq of the last change written or attempted.
func (j *Journal) Seq() int64 {
	return j.clock.Current()
}

// Err returns the first write error, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
