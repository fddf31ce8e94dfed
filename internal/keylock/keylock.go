// Package keylock serialises work per key. Holders of different keys never
// wait on each other; holders of the same key queue in arrival order as far
// as the runtime scheduler allows.
package keylock

import (
	"context"
	"sync"
)

// Release frees a held key. Calling it more than once is a no-op.
type Release func()

// Locker acquires exclusive ownership of a key.
type Locker interface {
	// Acquire blocks until key is free or ctx is done.
	Acquire(ctx context.Context, key string) (Release, error)
}

// WithLock runs fn while holding key and releases it on every exit path,
// including a panic in fn.
func WithLock(ctx context.Context, l Locker, key string, fn func(ctx context.Context) error) error {
	release, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

type entry struct {
	slot chan struct{}
	refs int
}

// Local is an in-process Locker. Entries are created on first use and dropped
// once no goroutine holds or waits for the key.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewLocal constructs an empty in-process locker.
func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			l.unref(key, e)
		})
	}, nil
}

func (l *Local) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of keys currently held or awaited.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
