package view

import (
	"context"
	"sync"
)

// Liveness tracks whether the view that started some work is still mounted.
// It flips to dead once ctx is done; updates applied through Apply after that
// are dropped.
type Liveness struct {
	ctx   context.Context
	mu    sync.Mutex
	alive bool
	stop  func() bool
}

// NewLiveness ties a liveness flag to ctx. Call Release when done.
func NewLiveness(ctx context.Context) *Liveness {
	l := &Liveness{ctx: ctx, alive: true}
	l.stop = context.AfterFunc(ctx, l.unmount)
	return l
}

func (l *Liveness) unmount() {
	l.mu.Lock()
	l.alive = false
	l.mu.Unlock()
}

// Alive reports whether the view is still mounted.
func (l *Liveness) Alive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted()
}

func (l *Liveness) mounted() bool {
	return l.alive && l.ctx.Err() == nil
}

// Apply runs fn only while the view is mounted and reports whether it ran.
// Unmounting waits for a running fn to finish.
func (l *Liveness) Apply(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted() {
		return false
	}
	fn()
	return true
}

// Release detaches the flag from its context.
func (l *Liveness) Release() {
	l.stop()
}
