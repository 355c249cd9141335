// Package clock provides Clock implementations.
package clock

import (
	"sync"
	"time"

	"github.com/artpar/catalogctl/ports"
)

// Real uses the system clock.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time {
	return time.Now()
}

// After waits for d on the system clock.
func (Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Fake provides a controllable clock for testing. Timers created with After
// fire only when Advance moves the clock past their deadline.
type Fake struct {
	mu      sync.Mutex
	cond    *sync.Cond
	current time.Time
	timers  []fakeTimer
}

type fakeTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// NewFake creates a fake clock set to the given time.
func NewFake(t time.Time) *Fake {
	f := &Fake{current: t}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// After returns a channel that receives once the clock reaches now+d.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	deadline := f.current.Add(d)
	if d <= 0 {
		ch <- f.current
		return ch
	}
	f.timers = append(f.timers, fakeTimer{deadline: deadline, ch: ch})
	f.cond.Broadcast()
	return ch
}

// Advance moves the fake time forward by d and fires due timers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = f.current.Add(d)
	pending := f.timers[:0]
	for _, t := range f.timers {
		if !t.deadline.After(f.current) {
			t.ch <- f.current
			continue
		}
		pending = append(pending, t)
	}
	f.timers = pending
}

// BlockUntil waits until at least n timers are pending.
func (f *Fake) BlockUntil(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.timers) < n {
		f.cond.Wait()
	}
}

// Ensure interface compliance.
var (
	_ ports.Clock = Real{}
	_ ports.Clock = (*Fake)(nil)
)
