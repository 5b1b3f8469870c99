package mpi

import "sync"

// postedReceive is a receive that has no matching frame yet: it sits in
// the PRQ until deliver() finds a frame for it.
type postedReceive struct {
	wantSrc  int32 // ANY_SOURCE (-1) or an exact rank
	wantTag  int32 // ANY_TAG (-1) or an exact tag
	buf      []byte
	elemSize int // datatype size in bytes, for translating byte counts to element counts
	req      *Request
}

// matchEngine pairs arriving frames with posted receives by (source, tag),
// with wildcard support. UQ (unexpected queue) and PRQ (posted-receive
// queue) are both protected by a single mutex.
type matchEngine struct {
	mu      sync.Mutex
	uq      []frame
	prq     []postedReceive
	metrics MetricHook
}

func newMatchEngine(metrics MetricHook) *matchEngine {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &matchEngine{metrics: metrics}
}

func wildcardMatch(wantSrc, wantTag, src, tag int32) bool {
	return (wantSrc == AnySource || wantSrc == src) && (wantTag == AnyTag || wantTag == tag)
}

// deliver hands an arrived frame to the engine: it completes the first
// matching posted receive (FIFO order in the PRQ), or appends the frame to
// the UQ if nothing is waiting for it yet.
func (m *matchEngine) deliver(f frame) {
	m.mu.Lock()
	for i, r := range m.prq {
		if !wildcardMatch(r.wantSrc, r.wantTag, f.source, f.tag) {
			continue
		}
		m.prq = append(m.prq[:i], m.prq[i+1:]...)
		m.mu.Unlock()
		completeReceive(r, f, m.metrics)
		return
	}
	m.uq = append(m.uq, f)
	m.mu.Unlock()
}

// post registers a receive. If a matching frame is already sitting in the
// UQ it completes req immediately; otherwise the receive is appended to
// the PRQ and req.cancelFn is wired to remove it before a match occurs.
func (m *matchEngine) post(wantSrc, wantTag int32, buf []byte, elemSize int, req *Request) {
	m.mu.Lock()
	for i, f := range m.uq {
		if !wildcardMatch(wantSrc, wantTag, f.source, f.tag) {
			continue
		}
		m.uq = append(m.uq[:i], m.uq[i+1:]...)
		m.mu.Unlock()
		completeReceive(postedReceive{wantSrc: wantSrc, wantTag: wantTag, buf: buf, elemSize: elemSize, req: req}, f, m.metrics)
		return
	}

	pr := postedReceive{wantSrc: wantSrc, wantTag: wantTag, buf: buf, elemSize: elemSize, req: req}
	m.prq = append(m.prq, pr)
	m.mu.Unlock()

	req.mu.Lock()
	req.cancelFn = func() bool { return m.cancel(req) }
	req.mu.Unlock()
}

// cancel removes the posted receive owned by req from the PRQ, if it is
// still there. It returns false if the receive has already been matched
// and removed by deliver/post.
func (m *matchEngine) cancel(req *Request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.prq {
		if r.req == req {
			m.prq = append(m.prq[:i], m.prq[i+1:]...)
			return true
		}
	}
	return false
}

// probe inspects the UQ for a frame matching (wantSrc, wantTag) without
// removing it.
func (m *matchEngine) probe(wantSrc, wantTag int32) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.uq {
		if wildcardMatch(wantSrc, wantTag, f.source, f.tag) {
			return Status{Source: int(f.source), Tag: int(f.tag), Count: len(f.payload)}, true
		}
	}
	return Status{}, false
}

// completeReceive copies the frame's payload into the posted receive's
// buffer and completes its request, or fails the request with a
// truncation error when the payload does not fit.
func completeReceive(r postedReceive, f frame, metrics MetricHook) {
	if len(f.payload) > len(r.buf) {
		metrics.Truncation()
		r.req.complete(Status{}, newError(KindCommunication, "Recv", "truncation", nil))
		return
	}
	metrics.Matched()
	n := copy(r.buf, f.payload)
	elemSize := r.elemSize
	if elemSize == 0 {
		elemSize = 1
	}
	r.req.complete(Status{Source: int(f.source), Tag: int(f.tag), Count: n / elemSize}, nil)
}
