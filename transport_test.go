package mpi

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// pipeConns returns two connected net.Conn endpoints joined by a real
// loopback TCP socket, so peerTransport is exercised against the same
// net.Conn implementation it uses in production rather than an in-memory
// net.Pipe (whose synchronous, unbuffered semantics behave differently
// under concurrent writers).
func pipeConns(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	acceptCh := make(chan net.Conn, 1)
	errCh := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		acceptCh <- c
	}()

	dial, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	select {
	case accept := <-acceptCh:
		return dial, accept
	case err := <-errCh:
		t.Fatalf("accept: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for accept")
	}
	return nil, nil
}

func TestPeerTransportSendDeliversToEngine(t *testing.T) {
	connA, connB := pipeConns(t)
	defer connA.Close()
	defer connB.Close()

	engineB := newMatchEngine(noopMetrics{})
	tB := newPeerTransport(1, 0, connB, engineB, noopLogger{}, noopMetrics{})
	defer tB.close()

	tA := newPeerTransport(0, 1, connA, newMatchEngine(noopMetrics{}), noopLogger{}, noopMetrics{})
	defer tA.close()

	if err := tA.send(7, []byte("payload")); err != nil {
		t.Fatalf("send: %v", err)
	}

	buf := make([]byte, 32)
	req := newRequest()
	engineB.post(0, 7, buf, 1, req)
	st, err := req.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if string(buf[:st.Count]) != "payload" {
		t.Fatalf("got %q, want %q", buf[:st.Count], "payload")
	}
}

func TestPeerTransportMarksFailedOnWriteError(t *testing.T) {
	connA, connB := pipeConns(t)
	defer connB.Close()

	tA := newPeerTransport(0, 1, connA, newMatchEngine(noopMetrics{}), noopLogger{}, noopMetrics{})
	connA.Close() // force the next write to fail
	err := tA.send(0, []byte("x"))
	if err == nil {
		t.Fatalf("expected an error sending on a closed connection")
	}
	var mpiErr *Error
	if !errors.As(err, &mpiErr) {
		t.Fatalf("send() error = %v (%T), want *Error", err, err)
	}
	if mpiErr.Kind != KindCommunication {
		t.Fatalf("send() error kind = %v, want %v", mpiErr.Kind, KindCommunication)
	}
	if err := tA.failure(); err == nil {
		t.Fatalf("failure() should report an error once the transport has failed")
	} else if !errors.As(err, &mpiErr) || mpiErr.Kind != KindCommunication {
		t.Fatalf("failure() error = %v, want a KindCommunication *Error", err)
	}
}

// TestPeerTransportCloseDoesNotRaceSend hammers send() concurrently with a
// close() to catch a "send on closed channel" panic under -race: every
// send() call must either succeed, observe the transport failed, or
// observe it closed, never panic.
func TestPeerTransportCloseDoesNotRaceSend(t *testing.T) {
	connA, connB := pipeConns(t)
	defer connB.Close()

	tA := newPeerTransport(0, 1, connA, newMatchEngine(noopMetrics{}), noopLogger{}, noopMetrics{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tA.send(0, []byte("x"))
		}()
	}
	tA.close()
	wg.Wait()
}
