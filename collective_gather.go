package mpi

// Gather collects sendCount elements of dtype from every rank's sendbuf
// into root's recvbuf, placed at offset rank*sendCount*dtype.Size(),
// including root's own chunk via a local copy. recvbuf must have room
// for Size()*sendCount elements and is only written on root.
func (c *Comm) Gather(sendbuf []byte, sendCount int, dtype Datatype, recvbuf []byte, root int) error {
	end := c.startOp("gather")
	var err error
	defer func() { end(err) }()

	if err = c.checkRank("Gather", root); err != nil {
		return err
	}
	chunk := sendCount * dtype.Size()
	tag := c.collectiveTag(tagGather)

	if c.Size() == 1 {
		copy(recvbuf[:chunk], sendbuf[:chunk])
		return nil
	}

	if c.Rank() == root {
		copy(recvbuf[root*chunk:(root+1)*chunk], sendbuf[:chunk])
		for r := 0; r < c.Size(); r++ {
			if r == root {
				continue
			}
			if _, e := c.irecvAndWait(recvbuf[r*chunk:(r+1)*chunk], sendCount, dtype, r, tag); e != nil {
				err = e
				return err
			}
		}
		return nil
	}

	_, err = c.isendAndWait(sendbuf, sendCount, dtype, root, tag)
	return err
}

// Allgather is Gather followed by a broadcast of the assembled buffer
// from root 0, so every rank ends with the same concatenation of every
// rank's contribution.
func (c *Comm) Allgather(sendbuf []byte, sendCount int, dtype Datatype, recvbuf []byte) error {
	if err := c.Gather(sendbuf, sendCount, dtype, recvbuf, 0); err != nil {
		return err
	}
	return c.Bcast(recvbuf, sendCount*c.Size(), dtype, 0)
}

// Gatherv is the variable-count counterpart to Gather: recvCounts[r] and
// displs[r] give the element count and element offset within recvbuf for
// rank r's contribution, letting ranks contribute differently sized
// chunks.
func (c *Comm) Gatherv(sendbuf []byte, sendCount int, dtype Datatype, recvbuf []byte, recvCounts, displs []int, root int) error {
	end := c.startOp("gatherv")
	var err error
	defer func() { end(err) }()

	if err = c.checkRank("Gatherv", root); err != nil {
		return err
	}
	if len(recvCounts) != c.Size() || len(displs) != c.Size() {
		err = newError(KindOperationFailed, "Gatherv", "recvCounts/displs must have Size() entries", nil)
		return err
	}
	elemSize := dtype.Size()
	tag := c.collectiveTag(tagGatherv)

	if c.Rank() == root {
		for r := 0; r < c.Size(); r++ {
			off := displs[r] * elemSize
			n := recvCounts[r] * elemSize
			dst := recvbuf[off : off+n]
			if r == root {
				copy(dst, sendbuf[:sendCount*elemSize])
				continue
			}
			if _, e := c.irecvAndWait(dst, recvCounts[r], dtype, r, tag); e != nil {
				err = e
				return err
			}
		}
		return nil
	}

	_, err = c.isendAndWait(sendbuf, sendCount, dtype, root, tag)
	return err
}
