package authflow

import (
	"fmt"
	"sync"
	"time"
)

// Timer is the single-owner countdown clock behind an OTP challenge. At most
// one countdown is live per Timer: Start always supersedes the previous run,
// so two concurrent tickers can never exist for the same challenge.
//
// Callbacks run outside the Timer's lock, on the countdown goroutine. Exactly
// one expiry callback fires per run, at zero.
type Timer struct {
	mu        sync.Mutex
	remaining int
	gen       uint64
	active    bool
	stop      chan struct{}

	// interval is one second in production; tests shorten it.
	interval time.Duration

	onTick   func(remaining int)
	onExpire func()
}

// NewTimer describes the newtimer operation and its observable behavior.
//
// NewTimer may return an error when input validation, dependency calls, or security checks fail.
// NewTimer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewTimer(onTick func(remaining int), onExpire func()) *Timer {
	return &Timer{
		interval: time.Second,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start begins a countdown of the given number of seconds, cancelling any
// countdown already running. The initial value is rendered immediately.
func (t *Timer) Start(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	t.mu.Lock()
	if t.active {
		close(t.stop)
	}
	t.gen++
	gen := t.gen
	t.remaining = seconds
	t.active = true
	stop := make(chan struct{})
	t.stop = stop
	onTick := t.onTick
	t.mu.Unlock()

	if onTick != nil {
		onTick(seconds)
	}

	go t.run(gen, stop)
}

// Cancel stops the countdown without side effects. It is safe to call when no
// countdown is running.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		close(t.stop)
		t.active = false
	}
}

// Remaining describes the remaining operation and its observable behavior.
//
// Remaining may return an error when input validation, dependency calls, or security checks fail.
// Remaining does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Active describes the active operation and its observable behavior.
//
// Active may return an error when input validation, dependency calls, or security checks fail.
// Active does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Timer) run(gen uint64, stop chan struct{}) {
	ticker := time.NewTicker(t.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			tick, expire, done := t.advance(gen)
			if tick != nil {
				tick()
			}
			if expire != nil {
				expire()
			}
			if done {
				return
			}
		}
	}
}

// advance consumes one tick for the given generation and returns the callbacks
// to invoke outside the lock. A stale generation consumes nothing.
func (t *Timer) advance(gen uint64) (tick func(), expire func(), done bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || gen != t.gen {
		return nil, nil, true
	}

	t.remaining--
	if t.remaining < 0 {
		t.remaining = 0
	}
	remaining := t.remaining

	if t.onTick != nil {
		cb := t.onTick
		tick = func() { cb(remaining) }
	}

	if remaining == 0 {
		t.active = false
		if t.onExpire != nil {
			expire = t.onExpire
		}
		return tick, expire, true
	}

	return tick, nil, false
}

func (t *Timer) tickInterval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.interval <= 0 {
		return time.Second
	}
	return t.interval
}

// FormatCountdown describes the formatcountdown operation and its observable behavior.
//
// FormatCountdown may return an error when input validation, dependency calls, or security checks fail.
// FormatCountdown does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
