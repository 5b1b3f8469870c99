package mpi

// Bcast sends count elements of dtype from root's buf to every other
// rank's buf. On the root it is a no-op read of buf; on every other rank
// buf is overwritten with root's data. Implemented as the root sending to
// each non-root concurrently; a tree variant would reduce the root's
// fan-out but isn't needed at the scales this runtime targets.
func (c *Comm) Bcast(buf []byte, count int, dtype Datatype, root int) error {
	if c.Size() == 1 {
		return nil
	}
	end := c.startOp("bcast")
	var err error
	defer func() { end(err) }()

	if err = c.checkRank("Bcast", root); err != nil {
		return err
	}
	tag := c.collectiveTag(tagBcast)

	if c.Rank() == root {
		reqs := make([]*Request, 0, c.Size()-1)
		for r := 0; r < c.Size(); r++ {
			if r == root {
				continue
			}
			req, e := c.isendWire(buf, count, dtype, r, tag)
			if e != nil {
				err = e
				return err
			}
			reqs = append(reqs, req)
		}
		_, err = WaitAll(reqs)
		return err
	}

	_, err = c.irecvAndWait(buf, count, dtype, root, tag)
	return err
}
