package mpi

// Alltoall sends chunk i (sendCount elements of dtype) of this rank's
// sendbuf to rank i, and fills this rank's recvbuf with chunk r received
// from every rank r, including a local copy for i == Rank(). Every
// send/receive pair is issued non-blocking and waited on together so that
// the full exchange, which is symmetric across every pair of ranks,
// cannot deadlock waiting on a peer's matching call.
func (c *Comm) Alltoall(sendbuf []byte, sendCount int, dtype Datatype, recvbuf []byte, recvCount int) error {
	end := c.startOp("alltoall")
	var err error
	defer func() { end(err) }()

	sendChunk := sendCount * dtype.Size()
	recvChunk := recvCount * dtype.Size()
	self := c.Rank()

	copy(recvbuf[self*recvChunk:(self+1)*recvChunk], sendbuf[self*sendChunk:(self+1)*sendChunk])

	if c.Size() == 1 {
		return nil
	}

	reqs := make([]*Request, 0, 2*(c.Size()-1))
	for r := 0; r < c.Size(); r++ {
		if r == self {
			continue
		}
		recvTag := c.collectiveTag(tagAlltoallBase + int32(r))
		req, e := c.irecvWire(recvbuf[r*recvChunk:(r+1)*recvChunk], recvCount, dtype, r, recvTag)
		if e != nil {
			err = e
			return err
		}
		reqs = append(reqs, req)
	}
	for r := 0; r < c.Size(); r++ {
		if r == self {
			continue
		}
		sendTag := c.collectiveTag(tagAlltoallBase + int32(self))
		req, e := c.isendWire(sendbuf[r*sendChunk:(r+1)*sendChunk], sendCount, dtype, r, sendTag)
		if e != nil {
			err = e
			return err
		}
		reqs = append(reqs, req)
	}

	_, err = WaitAll(reqs)
	return err
}

// Alltoallv is the variable-count counterpart to Alltoall: sendCounts/
// sendDispls describe this rank's outgoing chunks (in elements, indexed
// by destination rank) and recvCounts/recvDispls describe where each
// incoming chunk lands in recvbuf (indexed by source rank).
func (c *Comm) Alltoallv(sendbuf []byte, sendCounts, sendDispls []int, dtype Datatype, recvbuf []byte, recvCounts, recvDispls []int) error {
	end := c.startOp("alltoallv")
	var err error
	defer func() { end(err) }()

	n := c.Size()
	if len(sendCounts) != n || len(sendDispls) != n || len(recvCounts) != n || len(recvDispls) != n {
		err = newError(KindOperationFailed, "Alltoallv", "count/displ slices must have Size() entries", nil)
		return err
	}
	elemSize := dtype.Size()
	self := c.Rank()

	selfRecvOff := recvDispls[self] * elemSize
	selfSendOff := sendDispls[self] * elemSize
	selfN := recvCounts[self] * elemSize
	copy(recvbuf[selfRecvOff:selfRecvOff+selfN], sendbuf[selfSendOff:selfSendOff+sendCounts[self]*elemSize])

	if n == 1 {
		return nil
	}

	reqs := make([]*Request, 0, 2*(n-1))
	for r := 0; r < n; r++ {
		if r == self {
			continue
		}
		off := recvDispls[r] * elemSize
		cnt := recvCounts[r] * elemSize
		recvTag := c.collectiveTag(tagAlltoallBase + int32(r))
		req, e := c.irecvWire(recvbuf[off:off+cnt], recvCounts[r], dtype, r, recvTag)
		if e != nil {
			err = e
			return err
		}
		reqs = append(reqs, req)
	}
	for r := 0; r < n; r++ {
		if r == self {
			continue
		}
		off := sendDispls[r] * elemSize
		cnt := sendCounts[r] * elemSize
		sendTag := c.collectiveTag(tagAlltoallBase + int32(self))
		req, e := c.isendWire(sendbuf[off:off+cnt], sendCounts[r], dtype, r, sendTag)
		if e != nil {
			err = e
			return err
		}
		reqs = append(reqs, req)
	}

	_, err = WaitAll(reqs)
	return err
}
