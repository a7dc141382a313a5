// Package poll runs a function repeatedly with a fixed pause between
// runs and measures how often it completes.
package poll

import (
	"context"
	"sync"
	"time"
)

// Task is a handle to a running poll loop.
type Task struct {
	interval time.Duration

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
	done    chan struct{}
}

// Start calls fn, waits interval, and repeats until Stop is called or ctx
// is done. Runs never overlap: the wait starts after fn returns, so the
// effective period is interval plus the duration of fn.
//
// fn receives ctx, not a task-scoped context. Stop does not interrupt a
// run that was already admitted, and such a run may enter fn after Stop
// returns.
func Start(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) *Task {
	t := &Task{
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.run(ctx, fn)
	return t
}

func (t *Task) run(ctx context.Context, fn func(ctx context.Context)) {
	defer close(t.done)

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		if !t.admit(ctx) {
			return
		}
		fn(ctx)

		timer.Reset(t.interval)
		select {
		case <-timer.C:
		case <-t.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// admit decides under the lock whether another run may begin. No run is
// admitted after Stop has returned, but one admitted just before Stop
// calls fn without further checks.
func (t *Task) admit(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && ctx.Err() == nil
}

// Stop prevents any further runs from being admitted. A run already
// admitted, including one whose fn has not been entered yet, is not
// interrupted and Stop does not wait for it; use Wait for that. Callers
// that must not act after Stop need their own check inside fn.
// Stop is idempotent.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.stopCh)
}

// Wait blocks until the loop goroutine has exited.
func (t *Task) Wait() {
	<-t.done
}

// Done is closed when the loop goroutine exits.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
