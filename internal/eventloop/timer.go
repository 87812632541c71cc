package eventloop

import (
	"sync"
	"time"
)

// TimeoutAction tells the loop what to do with a timer after it fired.
type TimeoutAction struct {
	again time.Duration
}

// Drop removes the timer.
var Drop = TimeoutAction{}

// ToDuration re-arms the timer to fire again after d.
func ToDuration(d time.Duration) TimeoutAction {
	return TimeoutAction{again: d}
}

// Timer is a loop timer.
type Timer struct {
	mu        sync.Mutex
	t         *time.Timer
	cancelled bool
}

// Cancel stops the timer. A callback already queued on the loop does not
// run.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	if t.t != nil {
		t.t.Stop()
	}
}

func (t *Timer) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// InsertTimer runs fn on the loop after d. fn decides whether the timer
// fires again.
func (l *Loop) InsertTimer(d time.Duration, fn func() TimeoutAction) *Timer {
	timer := &Timer{}
	timer.arm(l, d, fn)
	return timer
}

func (t *Timer) arm(l *Loop, d time.Duration, fn func() TimeoutAction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.isCancelled() {
				return
			}
			if next := fn(); next.again > 0 {
				t.arm(l, next.again, fn)
			}
		})
	})
}
