package harness

import "sync"

// flowOutcome is what one supervised flow goroutine hands back: the index of
// the flow in launch order, and either a measurement or an error.
type flowOutcome struct {
	flow   int
	result FlowResult
	err    error
}

// outcomeQueue is the single thread-safe hand-off point between flow
// goroutines and the coordinator. Producers enqueue exactly one outcome per
// flow; the consumer reads exactly as many outcomes as flows were launched,
// in whatever order they arrive, and re-attributes them by flow index.
//
// The queue uses a buffered signal channel so the consumer can wait with a
// select against context cancellation instead of blocking unconditionally.
type outcomeQueue struct {
	mu       sync.Mutex
	outcomes []flowOutcome
	closed   bool
	signal   chan struct{} // coalesced availability signal, buffer of 1
}

func newOutcomeQueue() *outcomeQueue {
	return &outcomeQueue{
		outcomes: make([]flowOutcome, 0, 2),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds an outcome. Safe to call from any goroutine.
// Returns false if the queue has been closed.
func (q *outcomeQueue) Enqueue(o flowOutcome) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.outcomes = append(q.outcomes, o)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front outcome without blocking.
func (q *outcomeQueue) TryDequeue() (flowOutcome, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.outcomes) == 0 {
		return flowOutcome{}, false
	}
	o := q.outcomes[0]
	q.outcomes[0] = flowOutcome{}
	if len(q.outcomes) == 1 {
		q.outcomes = q.outcomes[:0]
	} else {
		q.outcomes = q.outcomes[1:]
	}
	return o, true
}

// Wait returns the availability signal for use in a select:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // TryDequeue
//	}
func (q *outcomeQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued outcomes.
func (q *outcomeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.outcomes)
}

// Close marks the queue finished and wakes any waiter.
func (q *outcomeQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
