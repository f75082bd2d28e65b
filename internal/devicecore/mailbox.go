package devicecore

import "sync"

// Mailbox is the process-wide event queue that feeds the Core's single
// event-processing goroutine. Producers (timers, the APS adapter, the DDF
// engine, setState's StateEnter dispatch) call Post from any goroutine;
// only the Core's run loop calls Next, so ordering for a given DeviceKey
// is exactly the order events were Posted — state handlers never block
// on I/O, they only enqueue and return (spec §5).
//
// It is an unbounded FIFO guarded by a mutex and a condition variable,
// the same shape as internal/web's WSHub broadcast loop but without a
// fixed channel capacity: a device's own StateEnter re-queue must never
// be dropped under backpressure the way a best-effort broadcast can be.
type Mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Post enqueues an event. Safe to call from any goroutine.
func (m *Mailbox) Post(e Event) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, e)
	m.mu.Unlock()
	m.cond.Signal()
}

// Next blocks until an event is available or the mailbox is closed.
// The second return value is false once the mailbox is closed and drained.
func (m *Mailbox) Next() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.queue) == 0 {
		return Event{}, false
	}
	e := m.queue[0]
	m.queue = m.queue[1:]
	return e, true
}

// Close stops the mailbox; any blocked Next call returns immediately once
// the queue drains, and further Post calls are no-ops.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

// Len reports the number of queued, unprocessed events. For tests/metrics.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
