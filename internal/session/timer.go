package session

import (
	"sync"
	"time"
)

// RestTimer is a cancellable one-shot countdown driving the rest period
// between sets. A session holds at most one live timer and cancels it on
// every exit path (skip, navigation, finish, abandon), so an expiry callback
// can never fire after the rest period it belongs to has ended.
type RestTimer struct {
	mu        sync.Mutex
	remaining int
	paused    bool
	stopped   bool
	stop      chan struct{}
	onExpire  func()
}

// StartRestTimer starts a countdown of the given number of seconds, ticking
// at interval (one second in production; tests shorten it). onExpire runs on
// the timer goroutine exactly once, and never after Cancel.
func StartRestTimer(seconds int, interval time.Duration, onExpire func()) *RestTimer {
	t := &RestTimer{
		remaining: seconds,
		stop:      make(chan struct{}),
		onExpire:  onExpire,
	}
	go t.run(interval)
	return t
}

func (t *RestTimer) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			if t.paused {
				t.mu.Unlock()
				continue
			}
			t.remaining--
			expired := t.remaining <= 0
			if expired {
				t.stopped = true
			}
			t.mu.Unlock()

			if expired {
				t.onExpire()
				return
			}
		}
	}
}

// Pause stops the countdown without resetting it. The timer stays
// cancellable while paused.
func (t *RestTimer) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Resume continues a paused countdown.
func (t *RestTimer) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

// Running reports whether the countdown is live and not paused.
func (t *RestTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.paused
}

// Remaining returns the seconds left on the countdown.
func (t *RestTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining < 0 {
		return 0
	}
	return t.remaining
}

// Cancel stops the timer and guarantees onExpire will not fire afterwards.
// Safe to call more than once and after expiry.
func (t *RestTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.stop)
}
