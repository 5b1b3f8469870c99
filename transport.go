package mpi

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
)

// outgoingFrame is a unit of work queued on a peerTransport's send path.
type outgoingFrame struct {
	tag     int32
	payload []byte
	done    chan error
}

// peerTransport owns one connected TCP socket to a single remote rank. Its
// send path is at-most-one-writer: a dedicated drain goroutine pulls
// queued frames and writes them so concurrent Send callers never
// interleave header/payload bytes on the wire.
type peerTransport struct {
	localRank  int32
	remoteRank int
	conn       net.Conn
	engine     *matchEngine

	outbox chan outgoingFrame
	sendMu sync.RWMutex // held for read while enqueuing, for write while closing, so close never races a live send
	closed bool

	failed  atomic.Bool
	failMu  sync.Mutex
	failErr error

	logger  StructuredLogger
	metrics MetricHook

	wg sync.WaitGroup
}

func newPeerTransport(localRank int32, remoteRank int, conn net.Conn, engine *matchEngine, logger StructuredLogger, metrics MetricHook) *peerTransport {
	t := &peerTransport{
		localRank:  localRank,
		remoteRank: remoteRank,
		conn:       conn,
		engine:     engine,
		outbox:     make(chan outgoingFrame, 64),
		logger:     logger,
		metrics:    metrics,
	}
	t.wg.Add(2)
	go t.sendLoop()
	go t.receiveLoop()
	return t
}

// send enqueues a frame for transmission and blocks until the bytes have
// been handed to the kernel (or the transport fails).
func (t *peerTransport) send(tag int32, payload []byte) error {
	if t.failed.Load() {
		return t.failure()
	}
	t.sendMu.RLock()
	defer t.sendMu.RUnlock()
	if t.closed {
		return newError(KindCommunication, "Send", "transport closed", nil)
	}
	done := make(chan error, 1)
	t.outbox <- outgoingFrame{tag: tag, payload: payload, done: done}
	return <-done
}

func (t *peerTransport) sendLoop() {
	defer t.wg.Done()
	for f := range t.outbox {
		writeErr := writeFrame(t.conn, t.localRank, f.tag, f.payload)
		if writeErr != nil {
			t.markFailed(writeErr)
			f.done <- newError(KindCommunication, "Send", "write failed", writeErr)
			continue
		}
		if t.metrics != nil {
			t.metrics.FrameSent(len(f.payload))
		}
		f.done <- nil
	}
}

func (t *peerTransport) receiveLoop() {
	defer t.wg.Done()
	for {
		fr, err := readFrame(t.conn)
		if err != nil {
			if err != io.EOF {
				t.markFailed(err)
			}
			return
		}
		if t.metrics != nil {
			t.metrics.FrameReceived(len(fr.payload))
		}
		t.engine.deliver(fr)
	}
}

// markFailed transitions the transport to failed and records the cause so
// pending and future sends observe a communication error.
func (t *peerTransport) markFailed(err error) {
	t.failMu.Lock()
	if t.failErr == nil {
		t.failErr = err
	}
	t.failMu.Unlock()
	t.failed.Store(true)
	if t.logger != nil {
		t.logger.Debugw("peer transport failed", "remote_rank", t.remoteRank, "error", err)
	}
}

func (t *peerTransport) failure() error {
	t.failMu.Lock()
	defer t.failMu.Unlock()
	return newError(KindCommunication, "Send", "transport failed", t.failErr)
}

// close shuts down the connection and stops the send loop. Every send()
// call already past the closed check holds the read side of sendMu until
// its frame has been written (or the write has failed), so close waits
// for those frames before closing outbox and a concurrent send can never
// panic on a closed channel; a send() that reaches the closed check
// afterwards gets a KindCommunication error instead.
func (t *peerTransport) close() {
	t.sendMu.Lock()
	if !t.closed {
		t.closed = true
		close(t.outbox)
	}
	t.sendMu.Unlock()
	t.conn.Close()
}
