// Package eventloop runs the compositor's single-threaded event loop. Every
// piece of compositor state is touched only from callbacks running on the
// loop; other goroutines hand work over with Insert.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Insert after the loop stopped.
var ErrStopped = errors.New("event loop stopped")

const inboxSize = 1024

// Loop is a single-threaded callback loop.
//
// One iteration blocks for the first callback, drains the callbacks that are
// already queued, runs the idle callbacks, then the tail.
type Loop struct {
	inbox chan func()
	idle  []func()

	stopOnce sync.Once
	stopCh   chan struct{}
	mu       sync.Mutex
	err      error
}

// New creates a loop.
func New() *Loop {
	return &Loop{
		inbox:  make(chan func(), inboxSize),
		stopCh: make(chan struct{}),
	}
}

// Insert queues fn to run on the loop. It is safe to call from any
// goroutine. It blocks while the inbox is full.
func (l *Loop) Insert(fn func()) error {
	select {
	case <-l.stopCh:
		return ErrStopped
	default:
	}
	select {
	case l.inbox <- fn:
		return nil
	case <-l.stopCh:
		return ErrStopped
	}
}

// Post is Insert for callers that do not care whether the loop still runs.
func (l *Loop) Post(fn func()) {
	_ = l.Insert(fn)
}

// InsertIdle queues fn to run once the current batch of callbacks is done.
// It must only be called from the loop.
func (l *Loop) InsertIdle(fn func()) {
	l.idle = append(l.idle, fn)
}

// Stop asks the loop to return after the current iteration.
func (l *Loop) Stop() {
	l.StopWithError(nil)
}

// StopWithError stops the loop and makes Run return err. Only the first
// stop counts.
func (l *Loop) StopWithError(err error) {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		close(l.stopCh)
	})
}

// Stopped reports whether Stop was called.
func (l *Loop) Stopped() bool {
	select {
	case <-l.stopCh:
		return true
	default:
		return false
	}
}

// Done is closed once the loop is stopped.
func (l *Loop) Done() <-chan struct{} { return l.stopCh }

func (l *Loop) stopErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Run dispatches until the loop is stopped or ctx is done. tail runs at the
// end of every iteration.
func (l *Loop) Run(ctx context.Context, tail func()) error {
	for {
		if err := l.dispatch(ctx, -1, tail); err != nil {
			return err
		}
		if l.Stopped() {
			return l.stopErr()
		}
	}
}

// Dispatch runs one iteration, waiting at most timeout for the first
// callback. A negative timeout waits forever, zero does not wait.
func (l *Loop) Dispatch(timeout time.Duration, tail func()) error {
	return l.dispatch(context.Background(), timeout, tail)
}

func (l *Loop) dispatch(ctx context.Context, timeout time.Duration, tail func()) error {
	if len(l.idle) > 0 {
		timeout = 0
	}

	var timer <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return l.stopErr()
	case fn := <-l.inbox:
		fn()
		// Only what is queued now belongs to this batch.
		for n := len(l.inbox); n > 0; n-- {
			(<-l.inbox)()
		}
	case <-timer:
	}

	idle := l.idle
	l.idle = nil
	for _, fn := range idle {
		fn()
	}

	if tail != nil {
		tail()
	}
	return nil
}
