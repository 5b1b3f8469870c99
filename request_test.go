package mpi

import (
	"errors"
	"testing"
	"time"
)

func TestRequestWaitCompletesOK(t *testing.T) {
	req := newRequest()
	go req.complete(Status{Source: 1, Tag: 2, Count: 3}, nil)
	st, err := req.Wait()
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if st.Source != 1 || st.Tag != 2 || st.Count != 3 {
		t.Fatalf("Wait returned %+v", st)
	}
}

func TestRequestWaitCompletesError(t *testing.T) {
	req := newRequest()
	want := errors.New("boom")
	go req.complete(Status{}, want)
	_, err := req.Wait()
	if err != want {
		t.Fatalf("Wait returned %v, want %v", err, want)
	}
}

func TestRequestTestBeforeCompletion(t *testing.T) {
	req := newRequest()
	done, _, _ := req.Test()
	if done {
		t.Fatalf("Test reported done on a still-pending request")
	}
	req.complete(Status{}, nil)
	done, _, err := req.Test()
	if !done || err != nil {
		t.Fatalf("Test after completion = (%v, %v)", done, err)
	}
}

func TestRequestCompleteIsOneShot(t *testing.T) {
	req := newRequest()
	req.complete(Status{Count: 1}, nil)
	req.complete(Status{Count: 99}, errors.New("should be ignored"))
	st, err := req.Wait()
	if err != nil || st.Count != 1 {
		t.Fatalf("second complete() call overwrote the first: status=%+v err=%v", st, err)
	}
}

func TestRequestCancelPending(t *testing.T) {
	req := newRequest()
	cancelled := false
	req.cancelFn = func() bool { cancelled = true; return true }
	if err := req.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !cancelled {
		t.Fatalf("Cancel did not invoke cancelFn")
	}
	select {
	case <-req.done:
	case <-time.After(time.Second):
		t.Fatalf("cancelled request never closed its done channel")
	}
}

func TestRequestCancelAlreadyTerminal(t *testing.T) {
	req := newRequest()
	req.complete(Status{}, nil)
	if err := req.Cancel(); err == nil {
		t.Fatalf("expected an error cancelling an already-terminal request")
	}
}

func TestWaitAllCollectsFirstError(t *testing.T) {
	r1 := newRequest()
	r2 := newRequest()
	r3 := newRequest()
	want := errors.New("r2 failed")
	r1.complete(Status{Count: 1}, nil)
	r2.complete(Status{}, want)
	r3.complete(Status{Count: 3}, nil)

	statuses, err := WaitAll([]*Request{r1, r2, r3})
	if err != want {
		t.Fatalf("WaitAll error = %v, want %v", err, want)
	}
	if statuses[0].Count != 1 || statuses[2].Count != 3 {
		t.Fatalf("WaitAll statuses = %+v", statuses)
	}
}

func TestWaitAnyReturnsFirstCompleted(t *testing.T) {
	r1 := newRequest()
	r2 := newRequest()
	go func() {
		time.Sleep(10 * time.Millisecond)
		r2.complete(Status{Count: 42}, nil)
	}()
	idx, st, err := WaitAny([]*Request{r1, r2})
	if err != nil {
		t.Fatalf("WaitAny: %v", err)
	}
	if idx != 1 || st.Count != 42 {
		t.Fatalf("WaitAny returned idx=%d st=%+v, want idx=1 Count=42", idx, st)
	}
}

func TestWaitAnyEmptyList(t *testing.T) {
	if _, _, err := WaitAny(nil); err == nil {
		t.Fatalf("expected an error for an empty request list")
	}
}
