package devicecore

import (
	"sync"
	"time"
)

// TimerSet holds at most one armed single-shot timer per state level for
// one device (spec I2). Arming an already-armed level cancels the
// previous firing before starting the new one.
type TimerSet struct {
	mu     sync.Mutex
	timers [numLevels]*time.Timer
}

// newTimerSet creates an empty TimerSet.
func newTimerSet() *TimerSet {
	return &TimerSet{}
}

// arm starts a single-shot timer for level that, on expiry, posts
// StateTimeout(level) for key onto mb. Any previously armed timer for
// the same level is cancelled first.
func (ts *TimerSet) arm(mb *Mailbox, key DeviceKey, level StateLevel, d time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.timers[level] != nil {
		ts.timers[level].Stop()
	}
	ts.timers[level] = time.AfterFunc(d, func() {
		mb.Post(stateTimeoutEvent(key, level))
	})
}

// cancel stops the timer armed for level, if any.
func (ts *TimerSet) cancel(level StateLevel) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.timers[level] != nil {
		ts.timers[level].Stop()
		ts.timers[level] = nil
	}
}

// armed reports whether level currently has a live timer. For tests.
func (ts *TimerSet) armed(level StateLevel) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.timers[level] != nil
}

// cancelAll stops every armed timer, used when a device is removed.
func (ts *TimerSet) cancelAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.timers {
		if ts.timers[i] != nil {
			ts.timers[i].Stop()
			ts.timers[i] = nil
		}
	}
}
