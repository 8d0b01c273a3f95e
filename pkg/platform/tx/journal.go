package tx

import (
	"context"
	"sync"
)

type journalKey struct{}

// Journal collects deferred writes for in-memory stores. Writes are applied in
// registration order on Commit and dropped on Rollback.
type Journal struct {
	mu     sync.Mutex
	writes []func()
	done   bool
}

// Defer registers a write against the journal carried by ctx. Without a
// journal the write is applied immediately.
func Defer(ctx context.Context, write func()) {
	j, ok := ctx.Value(journalKey{}).(*Journal)
	if !ok {
		write()
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done {
		write()
		return
	}
	j.writes = append(j.writes, write)
}

func (j *Journal) commit() {
	j.mu.Lock()
	writes := j.writes
	j.writes = nil
	j.done = true
	j.mu.Unlock()
	for _, w := range writes {
		w()
	}
}

func (j *Journal) rollback() {
	j.mu.Lock()
	j.writes = nil
	j.done = true
	j.mu.Unlock()
}

// MemoryRunner is the Runner used with in-memory stores. Commits are
// serialized on the runner's commit lock, so two units never interleave their
// writes. Store reads do not take that lock and may see a unit that is still
// being applied; callers that need a consistent view hold the entity lock.
type MemoryRunner struct {
	commitMu sync.Mutex
}

// NewMemoryRunner creates a MemoryRunner.
func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

// RunInTx runs fn with a fresh journal, or joins the journal already in ctx.
func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*Journal); ok {
		return fn(ctx)
	}
	j := &Journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		j.rollback()
		return err
	}
	r.commitMu.Lock()
	defer r.commitMu.Unlock()
	j.commit()
	return nil
}
