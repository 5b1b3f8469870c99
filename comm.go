package mpi

import "sync/atomic"

// userTagLimit bounds the user-visible tag space; tags at or above this
// value are reserved for collective algorithms.
const userTagLimit = 1 << 16

// reservedWidth is the span reserved for collective tags above
// userTagLimit within one communicator's tag space.
const reservedWidth = 1 << 16

// tagSpaceStride is the width of tag space handed to each communicator so
// that Dup'd communicators can never collide with their parent's
// in-flight messages.
const tagSpaceStride = userTagLimit + reservedWidth

// Reserved collective tag offsets, relative to a communicator's private
// tag space.
const (
	tagBarrier      = userTagLimit + (1<<16 - 1) // high sentinel within the reserved window
	tagBcast        = userTagLimit + 1000
	tagReduce       = userTagLimit + 2000
	tagGather       = userTagLimit + 3000
	tagScatter      = userTagLimit + 4000
	tagAlltoallBase = userTagLimit + 5000 // + source rank
	tagScan         = userTagLimit + 6000
	tagGatherv      = userTagLimit + 7000
	tagScatterv     = userTagLimit + 8000
)

// Comm is a communicator: a group of ranks {0..Size()-1} together with
// this process's Rank() within it, a reference to the shared process
// manager, and a private tag-space offset so derived communicators
// cannot collide with their parent's in-flight messages. The world
// communicator is created at Init and freed at Finalize; Dup produces a
// new communicator over the same group with a fresh tag-space offset.
type Comm struct {
	mgr       *Manager
	tagOffset int32
	freed     atomic.Bool
}

// World returns this process's world communicator. It is valid from the
// successful return of Init until Finalize.
func World() (*Comm, error) {
	m, err := currentManager("World")
	if err != nil {
		return nil, err
	}
	return m.world, nil
}

// Size returns the total number of ranks in the world communicator, or 0
// if MPI is not initialized.
func Size() int {
	m, err := currentManager("Size")
	if err != nil {
		return 0
	}
	return m.size
}

// Rank returns this process's rank in the world communicator, or -1 if
// MPI is not initialized.
func Rank() int {
	m, err := currentManager("Rank")
	if err != nil {
		return -1
	}
	return int(m.rank)
}

// Size returns the total number of ranks in c's group.
func (c *Comm) Size() int { return c.mgr.size }

// Rank returns this process's rank within c's group.
func (c *Comm) Rank() int { return int(c.mgr.rank) }

// Dup produces a new communicator over the same group with a fresh
// tag-space offset; the original and the duplicate can be used
// concurrently without their messages colliding.
func (c *Comm) Dup() (*Comm, error) {
	if c.freed.Load() {
		return nil, newError(KindInvalidCommunicator, "Dup", "communicator freed", nil)
	}
	globalMu.Lock()
	offset := c.mgr.tagSpaceNext
	c.mgr.tagSpaceNext += tagSpaceStride
	globalMu.Unlock()
	return &Comm{mgr: c.mgr, tagOffset: offset}, nil
}

// Free releases c's tag-space. It does not tear down the underlying
// transport, which is shared by every communicator over this process
// manager.
func (c *Comm) Free() error {
	if !c.freed.CompareAndSwap(false, true) {
		return newError(KindInvalidCommunicator, "Free", "already freed", nil)
	}
	return nil
}

func (c *Comm) checkRank(op string, rank int) error {
	if rank < 0 || rank >= c.mgr.size {
		return newError(KindInvalidRank, op, "", nil)
	}
	return nil
}

func (c *Comm) checkTag(op string, tag int) error {
	if tag < 0 || tag >= userTagLimit {
		return newError(KindInvalidTag, op, "tag must be in [0, 65536)", nil)
	}
	return nil
}

// wireTag maps a user tag (or the ANY_TAG wildcard) to this communicator's
// private slice of the tag space.
func (c *Comm) wireTag(tag int32) int32 {
	if tag == AnyTag {
		return AnyTag
	}
	return c.tagOffset + tag
}

func (c *Comm) collectiveTag(base int32) int32 {
	return c.tagOffset + base
}

// startOp begins instrumentation for a collective call and returns a
// closer to invoke with the call's outcome: start a span, run the
// operation, end the span and record the metric with the outcome.
func (c *Comm) startOp(name string) func(error) {
	c.mgr.cfg.Metrics.CollectiveStarted(name)
	span := c.mgr.cfg.Tracer.StartSpan(name, TraceAttribute{Key: "rank", Value: c.Rank()})
	return func(err error) {
		span.End(err)
		c.mgr.cfg.Metrics.CollectiveCompleted(name, err)
	}
}
