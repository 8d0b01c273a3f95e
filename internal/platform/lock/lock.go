// Package lock provides per-entity exclusive locks for state transitions.
//
// Every transition on a listing, case or shipment runs under the lock for
// that entity id. When a transition touches several entities the locks are
// taken in the fixed order shipment, case, listing.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	dErrors "terralegit/pkg/domain-errors"
)

// Release gives the lock back. It is safe to call more than once.
type Release func()

// Locker acquires exclusive locks by key, blocking until the lock is free or
// ctx ends.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Key builds a lock key for an entity.
func Key(kind string, id fmt.Stringer) string {
	return kind + ":" + id.String()
}

// Memory is an in-process keyed mutex. Entries are reference counted and
// removed once no goroutine holds or waits for them.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewMemory creates an in-process Locker.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*entry)}
}

func (m *Memory) Acquire(ctx context.Context, key string) (Release, error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.unref(key, e)
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for entity lock")
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.unref(key, e)
		})
	}, nil
}

func (m *Memory) unref(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

// Size returns the number of live lock entries.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Bounded caps how long Acquire may wait for a contended lock.
type Bounded struct {
	Locker Locker
	Wait   time.Duration
}

func (b Bounded) Acquire(ctx context.Context, key string) (Release, error) {
	if b.Wait <= 0 {
		return b.Locker.Acquire(ctx, key)
	}
	waitCtx, cancel := context.WithTimeout(ctx, b.Wait)
	defer cancel()
	return b.Locker.Acquire(waitCtx, key)
}
