package selection

import (
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/key"
)

const defaultThrottle = 50 * time.Millisecond

// Resolver throttles selection-change events with a cancel-and-reschedule
// timer: each new event cancels the pending timer, so only the last event in
// a burst actually triggers resolution. Text selections change on every drag
// tick; resolving each one would churn the matcher for ranges the user is
// already past.
type Resolver struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	stopped bool
	resolve func(selected string) *TranscriptSelection
	deliver func(*TranscriptSelection)
}

// NewResolver creates a throttled resolver. resolve runs after the quiet
// period; its result (nil included) is handed to deliver.
func NewResolver(resolve func(string) *TranscriptSelection, deliver func(*TranscriptSelection)) *Resolver {
	delay := defaultThrottle
	if ms := viper.GetInt(key.SelectionThrottle); ms > 0 {
		delay = time.Duration(ms) * time.Millisecond
	}
	return &Resolver{delay: delay, resolve: resolve, deliver: deliver}
}

// Offer schedules resolution of the given selected text, superseding any
// pending one.
func (r *Resolver) Offer(selected string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, func() {
		r.mu.Lock()
		stopped := r.stopped
		r.mu.Unlock()
		if stopped {
			return
		}
		r.deliver(r.resolve(selected))
	})
}

// Stop cancels any pending resolution. Used on session teardown so a late
// timer cannot mutate state for a torn-down view.
func (r *Resolver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
