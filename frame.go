package mpi

import (
	"encoding/binary"
	"errors"
	"io"
)

// headerSize is the fixed size, in bytes, of a frame header: four
// little-endian int32 fields (source, tag, length, reserved).
const headerSize = 16

// maxPayloadBytes bounds a single frame's payload so a corrupted or
// malicious header cannot force an unbounded allocation.
const maxPayloadBytes = 1<<31 - 1

// header is the wire-level frame header: 16 bytes, little-endian,
// {source rank, tag, payload length, reserved=0}.
type header struct {
	source   int32
	tag      int32
	length   int32
	reserved int32
}

func (h header) encode() [headerSize]byte {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.source))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.tag))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.length))
	binary.LittleEndian.PutUint32(buf[12:16], 0) // reserved is always zeroed on send
	return buf
}

func decodeHeader(buf []byte) header {
	return header{
		source: int32(binary.LittleEndian.Uint32(buf[0:4])),
		tag:    int32(binary.LittleEndian.Uint32(buf[4:8])),
		length: int32(binary.LittleEndian.Uint32(buf[8:12])),
		// reserved bytes are ignored on receive
	}
}

// frame is a fully decoded message: the wire header plus a private copy of
// the payload bytes.
type frame struct {
	source  int32
	tag     int32
	payload []byte
}

// writeFrame serializes a header+payload write atomically from the
// perspective of the caller. It does not itself guarantee no interleaving
// with concurrent writers on w; callers must serialize writes to a shared
// connection (see peerTransport's single-writer drain goroutine).
func writeFrame(w io.Writer, source, tag int32, payload []byte) error {
	if len(payload) > maxPayloadBytes {
		return errors.New("mpi: payload exceeds frame capacity")
	}
	h := header{source: source, tag: tag, length: int32(len(payload))}
	buf := h.encode()
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// readFrame reads one frame from r: a header, then exactly length payload
// bytes. It blocks until the full frame has arrived or r returns an error.
func readFrame(r io.Reader) (frame, error) {
	var hbuf [headerSize]byte
	if _, err := io.ReadFull(r, hbuf[:]); err != nil {
		return frame{}, err
	}
	h := decodeHeader(hbuf[:])
	if h.length < 0 || h.length > maxPayloadBytes {
		return frame{}, errors.New("mpi: invalid frame length")
	}
	payload := make([]byte, h.length)
	if h.length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return frame{}, err
		}
	}
	return frame{source: h.source, tag: h.tag, payload: payload}, nil
}
