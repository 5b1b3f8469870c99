package mpi

// Scatter splits root's sendbuf into Size() chunks of sendCount elements
// of dtype and delivers chunk i to rank i's recvbuf, including a local
// copy for root's own chunk. sendbuf is only read on root.
func (c *Comm) Scatter(sendbuf []byte, recvbuf []byte, sendCount int, dtype Datatype, root int) error {
	end := c.startOp("scatter")
	var err error
	defer func() { end(err) }()

	if err = c.checkRank("Scatter", root); err != nil {
		return err
	}
	chunk := sendCount * dtype.Size()
	tag := c.collectiveTag(tagScatter)

	if c.Size() == 1 {
		copy(recvbuf[:chunk], sendbuf[:chunk])
		return nil
	}

	if c.Rank() == root {
		copy(recvbuf[:chunk], sendbuf[root*chunk:(root+1)*chunk])
		for r := 0; r < c.Size(); r++ {
			if r == root {
				continue
			}
			if _, e := c.isendAndWait(sendbuf[r*chunk:(r+1)*chunk], sendCount, dtype, r, tag); e != nil {
				err = e
				return err
			}
		}
		return nil
	}

	_, err = c.irecvAndWait(recvbuf, sendCount, dtype, root, tag)
	return err
}

// Scatterv is the variable-count counterpart to Scatter: sendCounts[r]
// and displs[r] give the element count and element offset within sendbuf
// for the chunk delivered to rank r.
func (c *Comm) Scatterv(sendbuf []byte, sendCounts, displs []int, dtype Datatype, recvbuf []byte, recvCount int, root int) error {
	end := c.startOp("scatterv")
	var err error
	defer func() { end(err) }()

	if err = c.checkRank("Scatterv", root); err != nil {
		return err
	}
	if c.Rank() == root && (len(sendCounts) != c.Size() || len(displs) != c.Size()) {
		err = newError(KindOperationFailed, "Scatterv", "sendCounts/displs must have Size() entries", nil)
		return err
	}
	elemSize := dtype.Size()
	tag := c.collectiveTag(tagScatterv)

	if c.Rank() == root {
		for r := 0; r < c.Size(); r++ {
			off := displs[r] * elemSize
			n := sendCounts[r] * elemSize
			src := sendbuf[off : off+n]
			if r == root {
				copy(recvbuf[:recvCount*elemSize], src)
				continue
			}
			if _, e := c.isendAndWait(src, sendCounts[r], dtype, r, tag); e != nil {
				err = e
				return err
			}
		}
		return nil
	}

	_, err = c.irecvAndWait(recvbuf, recvCount, dtype, root, tag)
	return err
}
