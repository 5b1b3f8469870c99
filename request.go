package mpi

import "sync"

// State is the lifecycle stage of a Request. Transitions are one-shot: a
// Request moves from pending to exactly one terminal state.
type State int

const (
	StatePending State = iota
	StateCompletedOK
	StateCompletedError
	StateCancelled
)

// Status describes a completed point-to-point operation: for a receive,
// the actual source/tag/count observed; for a send, the source/tag/count
// that were sent.
type Status struct {
	Source int
	Tag    int
	Count  int
}

// Request is the lifecycle handle for a non-blocking send or receive. A
// Request owns no buffer: the caller must keep the user buffer valid (not
// mutated for isend, not read for irecv) until the request reaches a
// terminal state.
type Request struct {
	mu     sync.Mutex
	state  State
	status Status
	err    error
	done   chan struct{}

	// cancelFn, when non-nil, attempts to remove the pending operation
	// (e.g. a posted receive from the PRQ) before it is matched. It
	// returns true if cancellation won the race.
	cancelFn func() bool
}

func newRequest() *Request {
	return &Request{done: make(chan struct{})}
}

// complete transitions the request into a terminal state exactly once.
// Later calls are no-ops.
func (r *Request) complete(status Status, err error) {
	r.mu.Lock()
	if r.state != StatePending {
		r.mu.Unlock()
		return
	}
	r.status = status
	if err != nil {
		r.state = StateCompletedError
		r.err = err
	} else {
		r.state = StateCompletedOK
	}
	r.mu.Unlock()
	close(r.done)
}

// Wait blocks until the request reaches a terminal state and returns its
// status and error.
func (r *Request) Wait() (Status, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.err
}

// Test returns immediately with (false, ...) if the request is still
// pending, or (true, status, err) once it has reached a terminal state.
func (r *Request) Test() (bool, Status, error) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return true, r.status, r.err
	default:
		return false, Status{}, nil
	}
}

// Cancel attempts to cancel a pending request. It fails (returns an error)
// if the request has already reached a terminal state; the caller must
// still wait on it in that case.
func (r *Request) Cancel() error {
	r.mu.Lock()
	if r.state != StatePending {
		r.mu.Unlock()
		return newError(KindOperationFailed, "Cancel", "request already terminal", nil)
	}
	fn := r.cancelFn
	r.mu.Unlock()

	if fn == nil || !fn() {
		return newError(KindOperationFailed, "Cancel", "request already matched", nil)
	}
	r.mu.Lock()
	if r.state == StatePending {
		r.state = StateCancelled
		r.mu.Unlock()
		close(r.done)
		return nil
	}
	r.mu.Unlock()
	return nil
}

// WaitAll waits for every request in order and returns all statuses. If
// any request completes with an error, WaitAll still waits for the
// remaining requests to reach a terminal state and returns the first
// error observed.
func WaitAll(reqs []*Request) ([]Status, error) {
	statuses := make([]Status, len(reqs))
	var firstErr error
	for i, r := range reqs {
		st, err := r.Wait()
		statuses[i] = st
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return statuses, firstErr
}

// WaitAny blocks until at least one request in reqs reaches a terminal
// state and returns its index and status. Ties are broken by scanning in
// order after a change is observed.
func WaitAny(reqs []*Request) (int, Status, error) {
	if len(reqs) == 0 {
		return -1, Status{}, newError(KindOperationFailed, "WaitAny", "empty request list", nil)
	}
	cases := make([]chan struct{}, len(reqs))
	for i, r := range reqs {
		cases[i] = r.done
	}
	idx := selectFirst(cases)
scan:
	for i, c := range cases {
		select {
		case <-c:
			idx = i
			break scan
		default:
		}
	}
	st, err := reqs[idx].Wait()
	return idx, st, err
}

// selectFirst blocks until one of the given channels is closed and returns
// its index, fanning one goroutine out per channel into a shared result
// channel.
func selectFirst(chans []chan struct{}) int {
	done := make(chan int, len(chans))
	for i, c := range chans {
		go func(i int, c chan struct{}) {
			<-c
			done <- i
		}(i, c)
	}
	return <-done
}
