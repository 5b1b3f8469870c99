package mpi

import "testing"

// These tests exercise the package-level singleton lifecycle in
// single-process (size=1) mode, which needs no mesh formation and so is
// safe to run within the shared test binary as long as each test
// finalizes before the next one initializes.

func TestInitFinalizeSingleProcess(t *testing.T) {
	if err := InitWithConfig(Config{Size: 1, Rank: 0}); err != nil {
		t.Fatalf("InitWithConfig: %v", err)
	}
	defer func() {
		if err := Finalize(); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
	}()

	if Rank() != 0 {
		t.Fatalf("Rank() = %d, want 0", Rank())
	}
	if Size() != 1 {
		t.Fatalf("Size() = %d, want 1", Size())
	}
	w, err := World()
	if err != nil {
		t.Fatalf("World: %v", err)
	}
	if w.Size() != 1 || w.Rank() != 0 {
		t.Fatalf("World() comm has Size=%d Rank=%d", w.Size(), w.Rank())
	}
}

func TestDoubleInitFails(t *testing.T) {
	if err := InitWithConfig(Config{Size: 1, Rank: 0}); err != nil {
		t.Fatalf("InitWithConfig: %v", err)
	}
	defer Finalize()

	if err := InitWithConfig(Config{Size: 1, Rank: 0}); err == nil {
		t.Fatalf("expected an error on a second Init while already initialized")
	}
}

func TestRankSizeBeforeInitAreSentinels(t *testing.T) {
	if got := Rank(); got != -1 {
		t.Fatalf("Rank() before Init = %d, want -1", got)
	}
	if got := Size(); got != 0 {
		t.Fatalf("Size() before Init = %d, want 0", got)
	}
	if _, err := World(); err == nil {
		t.Fatalf("World() before Init should fail")
	}
}

func TestFinalizeWithoutInitFails(t *testing.T) {
	if err := Finalize(); err == nil {
		t.Fatalf("Finalize() without a prior Init should fail")
	}
}

func TestFinalizeIsNotIdempotent(t *testing.T) {
	if err := InitWithConfig(Config{Size: 1, Rank: 0}); err != nil {
		t.Fatalf("InitWithConfig: %v", err)
	}
	if err := Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := Finalize(); err == nil {
		t.Fatalf("a second Finalize() should fail")
	}
}

func TestInitWithConfigRejectsBadRank(t *testing.T) {
	if err := InitWithConfig(Config{Size: 2, Rank: 5}); err == nil {
		t.Fatalf("expected an error for rank >= size")
	}
	if err := InitWithConfig(Config{Size: 0, Rank: 0}); err == nil {
		t.Fatalf("expected an error for non-positive size")
	}
}

func TestPackageLevelSendRecvLoopback(t *testing.T) {
	if err := InitWithConfig(Config{Size: 1, Rank: 0}); err != nil {
		t.Fatalf("InitWithConfig: %v", err)
	}
	defer Finalize()

	if err := Send([]byte("ping"), 4, Byte, 0, 11); err != nil {
		t.Fatalf("Send: %v", err)
	}
	buf := make([]byte, 8)
	st, err := Recv(buf, 4, Byte, 0, 11)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if string(buf[:st.Count]) != "ping" {
		t.Fatalf("got %q, want ping", buf[:st.Count])
	}
}
