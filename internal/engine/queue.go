package engine

import "sync"

// event is one queued action. reply is nil for actions nobody waits on
// (fetch completions).
type event struct {
	action Action
	reply  chan<- result
}

type result struct {
	state State
	err   error
}

// actionQueue is a thread-safe unbounded FIFO of events.
//
// Dispatchers and fetch goroutines enqueue from anywhere; only the Run loop
// dequeues. A buffered signal channel lets Run wait with select alongside
// its context.
type actionQueue struct {
	mu     sync.Mutex
	events []event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		events: make([]event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends ev. Returns false if the queue is closed.
func (q *actionQueue) Enqueue(ev event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, ev)

	// Non-blocking: the size-1 buffer coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event without blocking.
func (q *actionQueue) TryDequeue() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return event{}, false
	}
	ev := q.events[0]
	q.events[0] = event{} // release references held by the backing array
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return ev, true
}

// Wait returns a channel that fires when events may be available, and stays
// ready forever once the queue is closed.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending events.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close or Drain has been called.
func (q *actionQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close rejects further enqueues and wakes the waiter.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Drain closes the queue and returns whatever was still pending.
func (q *actionQueue) Drain() []event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.signal)
	}
	pending := q.events
	q.events = nil
	return pending
}
