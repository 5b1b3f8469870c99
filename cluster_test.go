package mpi

import "testing"

// newTestCluster builds n Manager/Comm pairs wired together with real
// loopback TCP connections (see pipeConns in transport_test.go), without
// going through the package-level Init singleton, so multiple "ranks" can
// run concurrently inside a single test process. Each element of the
// returned slice is rank i's world communicator.
func newTestCluster(t *testing.T, n int) []*Comm {
	t.Helper()
	managers := make([]*Manager, n)
	for i := range managers {
		managers[i] = &Manager{
			rank:   int32(i),
			size:   n,
			peers:  make(map[int]*peerTransport),
			engine: newMatchEngine(noopMetrics{}),
			cfg:    Config{}.withDefaults(),
		}
		managers[i].world = &Comm{mgr: managers[i], tagOffset: 0}
		managers[i].tagSpaceNext = tagSpaceStride
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			connI, connJ := pipeConns(t)
			managers[i].peers[j] = newPeerTransport(int32(i), j, connI, managers[i].engine, noopLogger{}, noopMetrics{})
			managers[j].peers[i] = newPeerTransport(int32(j), i, connJ, managers[j].engine, noopLogger{}, noopMetrics{})
		}
	}

	comms := make([]*Comm, n)
	for i := range managers {
		comms[i] = managers[i].world
	}
	return comms
}
