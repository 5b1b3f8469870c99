package mpi

// Send transmits count elements of dtype from buf to rank dst with the
// given tag. Send blocks until the framed bytes have been handed to the
// destination's transport (or, for dst == Rank(), appended directly to
// the local unexpected queue); it does not wait for the peer to receive
// them. Validates 0 <= dst < Size() and tag >= 0 before any I/O.
func (c *Comm) Send(buf []byte, count int, dtype Datatype, dst, tag int) error {
	if err := c.checkTag("Send", tag); err != nil {
		return err
	}
	req, err := c.isendWire(buf, count, dtype, dst, c.wireTag(int32(tag)))
	if err != nil {
		return err
	}
	_, err = req.Wait()
	return err
}

// Recv blocks until a message matching (src, tag) arrives and copies it
// into buf, returning its status. src may be AnySource and tag may be
// AnyTag.
func (c *Comm) Recv(buf []byte, count int, dtype Datatype, src, tag int) (Status, error) {
	if tag != int(AnyTag) {
		if err := c.checkTag("Recv", tag); err != nil {
			return Status{}, err
		}
	}
	req, err := c.irecvWire(buf, count, dtype, src, c.wireTag(int32(tag)))
	if err != nil {
		return Status{}, err
	}
	return req.Wait()
}

// ISend is the non-blocking counterpart to Send. The caller must not
// mutate buf until the returned Request reaches a terminal state.
func (c *Comm) ISend(buf []byte, count int, dtype Datatype, dst, tag int) (*Request, error) {
	if err := c.checkTag("ISend", tag); err != nil {
		return nil, err
	}
	return c.isendWire(buf, count, dtype, dst, c.wireTag(int32(tag)))
}

// IRecv is the non-blocking counterpart to Recv. The caller must not read
// buf until the returned Request reaches a terminal state.
func (c *Comm) IRecv(buf []byte, count int, dtype Datatype, src, tag int) (*Request, error) {
	if tag != int(AnyTag) {
		if err := c.checkTag("IRecv", tag); err != nil {
			return nil, err
		}
	}
	return c.irecvWire(buf, count, dtype, src, c.wireTag(int32(tag)))
}

// isendWire and irecvWire take an already-resolved wire tag, so internal
// callers (the collective algorithms) can address the reserved tag
// namespace directly without going through the user-tag validation and
// offsetting that Send/Recv apply.
func (c *Comm) isendWire(buf []byte, count int, dtype Datatype, dst int, wireTag int32) (*Request, error) {
	if err := c.checkRank("Send", dst); err != nil {
		return nil, err
	}
	nbytes := count * dtype.Size()
	if nbytes < 0 || nbytes > len(buf) {
		return nil, newError(KindOperationFailed, "Send", "buffer smaller than count*dtype.Size()", nil)
	}
	payload := make([]byte, nbytes)
	copy(payload, buf[:nbytes])

	req := newRequest()

	if dst == c.Rank() {
		c.mgr.engine.deliver(frame{source: c.mgr.rank, tag: wireTag, payload: payload})
		req.complete(Status{Source: dst, Tag: int(wireTag), Count: count}, nil)
		return req, nil
	}

	peer, ok := c.mgr.peers[dst]
	if !ok {
		return nil, newError(KindCommunication, "Send", "no transport to destination", nil)
	}
	go func() {
		err := peer.send(wireTag, payload)
		if err != nil {
			req.complete(Status{}, err)
			return
		}
		req.complete(Status{Source: dst, Tag: int(wireTag), Count: count}, nil)
	}()
	return req, nil
}

func (c *Comm) irecvWire(buf []byte, count int, dtype Datatype, src int, wireTag int32) (*Request, error) {
	if src != int(AnySource) {
		if err := c.checkRank("Recv", src); err != nil {
			return nil, err
		}
	}
	capBytes := count * dtype.Size()
	if capBytes < 0 || capBytes > len(buf) {
		return nil, newError(KindOperationFailed, "Recv", "buffer smaller than count*dtype.Size()", nil)
	}

	req := newRequest()
	wantSrc := int32(src)
	c.mgr.engine.post(wantSrc, wireTag, buf[:capBytes], dtype.Size(), req)
	return req, nil
}

// Probe inspects the unexpected queue for a frame matching (src, tag)
// without removing it; Probe returns immediately with found == false
// when nothing currently matches.
func (c *Comm) Probe(src, tag int) (Status, bool) {
	wantSrc := int32(src)
	wantTag := c.wireTag(int32(tag))
	st, ok := c.mgr.engine.probe(wantSrc, wantTag)
	return st, ok
}

// IProbe is an alias for Probe: both are non-blocking in this
// implementation, since there is no CPU-idle wait to distinguish them.
func (c *Comm) IProbe(src, tag int) (Status, bool) {
	return c.Probe(src, tag)
}
