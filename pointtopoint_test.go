package mpi

import (
	"sync"
	"testing"
	"time"
)

func TestSendRecvBetweenDistinctRanks(t *testing.T) {
	comms := newTestCluster(t, 2)
	defer closeCluster(comms)

	var wg sync.WaitGroup
	wg.Add(2)
	var recvErr error
	var st Status
	go func() {
		defer wg.Done()
		buf := make([]byte, 16)
		st, recvErr = comms[1].Recv(buf, 5, Byte, 0, 3)
		if recvErr == nil && string(buf[:st.Count]) != "hello" {
			t.Errorf("got payload %q", buf[:st.Count])
		}
	}()
	go func() {
		defer wg.Done()
		if err := comms[0].Send([]byte("hello"), 5, Byte, 1, 3); err != nil {
			t.Errorf("Send: %v", err)
		}
	}()
	wg.Wait()
	if recvErr != nil {
		t.Fatalf("Recv: %v", recvErr)
	}
	if st.Source != 0 || st.Tag != 3 {
		t.Fatalf("got status %+v", st)
	}
}

func TestSelfSendLoopback(t *testing.T) {
	comms := newTestCluster(t, 1)
	defer closeCluster(comms)
	c := comms[0]

	req, err := c.ISend([]byte("loop"), 4, Byte, 0, 1)
	if err != nil {
		t.Fatalf("ISend: %v", err)
	}
	buf := make([]byte, 8)
	st, err := c.Recv(buf, 4, Byte, 0, 1)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if string(buf[:st.Count]) != "loop" {
		t.Fatalf("got %q", buf[:st.Count])
	}
	if _, err := req.Wait(); err != nil {
		t.Fatalf("ISend request failed: %v", err)
	}
}

func TestRecvWithAnySourceAnyTag(t *testing.T) {
	comms := newTestCluster(t, 3)
	defer closeCluster(comms)

	var wg sync.WaitGroup
	wg.Add(1)
	var recvErr error
	var st Status
	go func() {
		defer wg.Done()
		buf := make([]byte, 16)
		st, recvErr = comms[0].Recv(buf, 3, Byte, int(AnySource), int(AnyTag))
	}()
	if err := comms[2].Send([]byte("abc"), 3, Byte, 0, 9); err != nil {
		t.Fatalf("Send: %v", err)
	}
	wg.Wait()
	if recvErr != nil {
		t.Fatalf("Recv: %v", recvErr)
	}
	if st.Source != 2 || st.Tag != 9 {
		t.Fatalf("got status %+v, want source=2 tag=9", st)
	}
}

func TestSendRejectsOutOfRangeTag(t *testing.T) {
	comms := newTestCluster(t, 2)
	defer closeCluster(comms)
	if err := comms[0].Send([]byte("x"), 1, Byte, 1, userTagLimit); err == nil {
		t.Fatalf("Send should reject a tag at or above userTagLimit")
	}
}

func TestProbeAcrossRanks(t *testing.T) {
	comms := newTestCluster(t, 2)
	defer closeCluster(comms)

	if err := comms[0].Send([]byte("probeme"), 7, Byte, 1, 4); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// give the frame time to arrive in rank 1's unexpected queue
	waitForProbe(t, comms[1], 0, 4)

	buf := make([]byte, 16)
	st, err := comms[1].Recv(buf, 7, Byte, 0, 4)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if string(buf[:st.Count]) != "probeme" {
		t.Fatalf("got %q", buf[:st.Count])
	}
}

func waitForProbe(t *testing.T, c *Comm, src, tag int) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if _, ok := c.Probe(src, tag); ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("probe never observed the expected frame")
}
