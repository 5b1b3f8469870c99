package mpi

import (
	"bytes"
	"testing"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := header{source: 3, tag: 42, length: 128}
	buf := h.encode()
	if len(buf) != headerSize {
		t.Fatalf("encode() produced %d bytes, want %d", len(buf), headerSize)
	}
	got := decodeHeader(buf[:])
	if got.source != h.source || got.tag != h.tag || got.length != h.length {
		t.Fatalf("decodeHeader() = %+v, want %+v", got, h)
	}
}

func TestHeaderReservedIsZeroed(t *testing.T) {
	h := header{source: 1, tag: 1, length: 0, reserved: 999}
	buf := h.encode()
	if buf[12] != 0 || buf[13] != 0 || buf[14] != 0 || buf[15] != 0 {
		t.Fatalf("reserved field was not zeroed on encode: %v", buf[12:16])
	}
}

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var wire bytes.Buffer
	payload := []byte("hello, mpi")
	if err := writeFrame(&wire, 2, 7, payload); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	f, err := readFrame(&wire)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if f.source != 2 || f.tag != 7 {
		t.Fatalf("got source=%d tag=%d, want source=2 tag=7", f.source, f.tag)
	}
	if !bytes.Equal(f.payload, payload) {
		t.Fatalf("got payload %q, want %q", f.payload, payload)
	}
}

func TestWriteReadEmptyPayload(t *testing.T) {
	var wire bytes.Buffer
	if err := writeFrame(&wire, 0, 0, nil); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	f, err := readFrame(&wire)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if len(f.payload) != 0 {
		t.Fatalf("got payload of length %d, want 0", len(f.payload))
	}
}

func TestReadFrameRejectsInvalidLength(t *testing.T) {
	var wire bytes.Buffer
	h := header{length: -1}
	buf := h.encode()
	wire.Write(buf[:])
	if _, err := readFrame(&wire); err == nil {
		t.Fatalf("expected an error for a negative frame length")
	}
}

func TestMultipleFramesOnOneStream(t *testing.T) {
	var wire bytes.Buffer
	if err := writeFrame(&wire, 0, 1, []byte("first")); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	if err := writeFrame(&wire, 1, 2, []byte("second")); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	f1, err := readFrame(&wire)
	if err != nil {
		t.Fatalf("readFrame (first): %v", err)
	}
	f2, err := readFrame(&wire)
	if err != nil {
		t.Fatalf("readFrame (second): %v", err)
	}
	if string(f1.payload) != "first" || string(f2.payload) != "second" {
		t.Fatalf("frames decoded out of order or corrupted: %q, %q", f1.payload, f2.payload)
	}
}
