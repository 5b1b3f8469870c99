package mpi

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoopLoggerSatisfiesBothInterfaces(t *testing.T) {
	var l Logger = noopLogger{}
	var s StructuredLogger = noopLogger{}
	l.Debugf("%d", 1)
	s.Debugw("msg", "k", "v")
}

func TestZapLoggerDebugwForwardsToSugaredLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	zl := NewZapLogger(zap.New(core))

	zl.Debugw("peer connected", "rank", 3, "remote", 4)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Message != "peer connected" {
		t.Fatalf("got message %q", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["rank"] != int64(3) {
		t.Fatalf("got rank field %v", fields["rank"])
	}
	if fields["remote"] != int64(4) {
		t.Fatalf("got remote field %v", fields["remote"])
	}
}

func TestZapLoggerDebugfForwardsFormattedMessage(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	zl := NewZapLogger(zap.New(core))

	zl.Debugf("frame of %d bytes", 128)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0].Message != "frame of 128 bytes" {
		t.Fatalf("got message %q", entries[0].Message)
	}
}
