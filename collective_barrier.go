package mpi

// Barrier blocks until every rank in c has entered Barrier, using a
// two-phase acknowledgement (non-root ranks send to rank 0, then rank 0
// sends an acknowledgement back) over the reserved barrier tag.
func (c *Comm) Barrier() error {
	if c.Size() == 1 {
		return nil
	}
	end := c.startOp("barrier")
	var err error
	defer func() { end(err) }()

	const root = 0
	tag := c.collectiveTag(tagBarrier)

	if c.Rank() == root {
		for r := 1; r < c.Size(); r++ {
			if _, e := c.irecvAndWait(nil, 0, Byte, r, tag); e != nil {
				err = e
				return err
			}
		}
		for r := 1; r < c.Size(); r++ {
			if _, e := c.isendAndWait(nil, 0, Byte, r, tag); e != nil {
				err = e
				return err
			}
		}
		return nil
	}

	if _, e := c.isendAndWait(nil, 0, Byte, root, tag); e != nil {
		err = e
		return err
	}
	if _, e := c.irecvAndWait(nil, 0, Byte, root, tag); e != nil {
		err = e
		return err
	}
	return nil
}

func (c *Comm) isendAndWait(buf []byte, count int, dtype Datatype, dst int, wireTag int32) (Status, error) {
	req, err := c.isendWire(buf, count, dtype, dst, wireTag)
	if err != nil {
		return Status{}, err
	}
	return req.Wait()
}

func (c *Comm) irecvAndWait(buf []byte, count int, dtype Datatype, src int, wireTag int32) (Status, error) {
	req, err := c.irecvWire(buf, count, dtype, src, wireTag)
	if err != nil {
		return Status{}, err
	}
	return req.Wait()
}
