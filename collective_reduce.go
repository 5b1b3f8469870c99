package mpi

// Reduce folds count elements of dtype from every rank's sendbuf into
// root's recvbuf using op. Contributions are folded with the operation's
// kernel, never overwritten: root's own contribution seeds the
// accumulator and each incoming buffer is folded in turn. recvbuf is
// only written on root; non-root ranks may pass nil. Numeric overflow
// follows the platform's two's-complement arithmetic; floating-point
// fan-in order is not required to be reproducible.
func (c *Comm) Reduce(sendbuf, recvbuf []byte, count int, dtype Datatype, op Op, root int) error {
	nbytes := count * dtype.Size()
	if c.Size() == 1 {
		if c.Rank() == root {
			copy(recvbuf[:nbytes], sendbuf[:nbytes])
		}
		return nil
	}

	end := c.startOp("reduce")
	var err error
	defer func() { end(err) }()

	if err = c.checkRank("Reduce", root); err != nil {
		return err
	}
	tag := c.collectiveTag(tagReduce)

	if c.Rank() == root {
		copy(recvbuf[:nbytes], sendbuf[:nbytes])
		tmp := make([]byte, nbytes)
		for r := 0; r < c.Size(); r++ {
			if r == root {
				continue
			}
			if _, e := c.irecvAndWait(tmp, count, dtype, r, tag); e != nil {
				err = e
				return err
			}
			if e := reduceInto(op, dtype, recvbuf[:nbytes], tmp, count); e != nil {
				err = e
				return err
			}
		}
		return nil
	}

	_, err = c.isendAndWait(sendbuf, count, dtype, root, tag)
	return err
}

// Allreduce computes the same reduction as Reduce but leaves the result
// in every rank's recvbuf, implemented as reduce-to-root-0 followed by a
// broadcast from root 0: allreduce(op) == reduce(0, op); bcast(0).
func (c *Comm) Allreduce(sendbuf, recvbuf []byte, count int, dtype Datatype, op Op) error {
	if err := c.Reduce(sendbuf, recvbuf, count, dtype, op, 0); err != nil {
		return err
	}
	return c.Bcast(recvbuf, count, dtype, 0)
}
