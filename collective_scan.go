package mpi

// Scan computes, for every rank r, the reduction of sendbuf over ranks
// 0..r inclusive into recvbuf, by passing a running accumulator down a
// chain from rank 0 to Size()-1 and folding each rank's own contribution
// in with op as it arrives: the operation is applied between partials
// rather than merely forwarding the previous rank's value.
func (c *Comm) Scan(sendbuf, recvbuf []byte, count int, dtype Datatype, op Op) error {
	end := c.startOp("scan")
	var err error
	defer func() { end(err) }()

	nbytes := count * dtype.Size()
	tag := c.collectiveTag(tagScan)
	rank, size := c.Rank(), c.Size()

	if rank == 0 {
		copy(recvbuf[:nbytes], sendbuf[:nbytes])
	} else {
		if _, e := c.irecvAndWait(recvbuf[:nbytes], count, dtype, rank-1, tag); e != nil {
			err = e
			return err
		}
		if e := reduceInto(op, dtype, recvbuf[:nbytes], sendbuf[:nbytes], count); e != nil {
			err = e
			return err
		}
	}

	if rank != size-1 {
		_, err = c.isendAndWait(recvbuf, count, dtype, rank+1, tag)
	}
	return err
}

// Exscan computes, for every rank r > 0, the reduction of sendbuf over
// ranks 0..r-1 (exclusive of r's own contribution) into recvbuf; rank 0
// has no predecessor contribution, so its recvbuf is set to op's
// identity element rather than left untouched.
func (c *Comm) Exscan(sendbuf, recvbuf []byte, count int, dtype Datatype, op Op) error {
	end := c.startOp("exscan")
	var err error
	defer func() { end(err) }()

	nbytes := count * dtype.Size()
	tag := c.collectiveTag(tagScan)
	rank, size := c.Rank(), c.Size()

	if size == 1 {
		id, e := identityBuffer(op, dtype, count)
		if e != nil {
			err = e
			return err
		}
		copy(recvbuf[:nbytes], id)
		return nil
	}

	if rank == 0 {
		id, e := identityBuffer(op, dtype, count)
		if e != nil {
			err = e
			return err
		}
		copy(recvbuf[:nbytes], id)
		_, err = c.isendAndWait(sendbuf, count, dtype, 1, tag)
		return err
	}

	if _, e := c.irecvAndWait(recvbuf[:nbytes], count, dtype, rank-1, tag); e != nil {
		err = e
		return err
	}

	if rank == size-1 {
		return nil
	}

	forward := make([]byte, nbytes)
	copy(forward, recvbuf[:nbytes])
	if e := reduceInto(op, dtype, forward, sendbuf[:nbytes], count); e != nil {
		err = e
		return err
	}
	_, err = c.isendAndWait(forward, count, dtype, rank+1, tag)
	return err
}
