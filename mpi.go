// Package mpi implements a Message Passing Interface runtime entirely on
// top of TCP sockets, with no dependency on a native MPI library.
// Processes are launched with their identity (rank and size) supplied by
// the environment (GOMPI_SIZE, GOMPI_RANK, GOMPI_PORT_BASE) and discover
// each other through a deterministic per-rank listening port on loopback.
// Once connected, they exchange typed messages using point-to-point
// primitives (Send, Recv, ISend, IRecv) and a suite of collective
// operations (Barrier, Bcast, Reduce, Allreduce, Gather, Scatter,
// Allgather, Alltoall, Scan) built on top of those primitives.
//
// A program must begin with a call to Init and should end with a call to
// Finalize. Init determines the size of the job and this process's rank,
// 0 <= Rank() < Size(), and establishes a full mesh of TCP connections
// among all ranks.
//
// Process spawning is out of scope: an external launcher (see
// mpirun/gompirun) is expected to set GOMPI_SIZE/GOMPI_RANK/
// GOMPI_PORT_BASE per child process before it calls Init.
package mpi

// Send is a package-level convenience wrapping World().Send.
func Send(buf []byte, count int, dtype Datatype, dst, tag int) error {
	w, err := World()
	if err != nil {
		return err
	}
	return w.Send(buf, count, dtype, dst, tag)
}

// Recv is a package-level convenience wrapping World().Recv.
func Recv(buf []byte, count int, dtype Datatype, src, tag int) (Status, error) {
	w, err := World()
	if err != nil {
		return Status{}, err
	}
	return w.Recv(buf, count, dtype, src, tag)
}

// ISend is a package-level convenience wrapping World().ISend.
func ISend(buf []byte, count int, dtype Datatype, dst, tag int) (*Request, error) {
	w, err := World()
	if err != nil {
		return nil, err
	}
	return w.ISend(buf, count, dtype, dst, tag)
}

// IRecv is a package-level convenience wrapping World().IRecv.
func IRecv(buf []byte, count int, dtype Datatype, src, tag int) (*Request, error) {
	w, err := World()
	if err != nil {
		return nil, err
	}
	return w.IRecv(buf, count, dtype, src, tag)
}
