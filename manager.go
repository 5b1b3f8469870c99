package mpi

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// AnySource and AnyTag are the wildcard sentinels usable on the receive
// side.
const (
	AnySource int32 = -1
	AnyTag    int32 = -1
)

// Manager is the process-wide singleton owning the listener, the table of
// per-peer transports, and the match engine. Its lifecycle is strictly
// bracketed by Init and Finalize; exactly one instance may exist at a
// time, guarded by a package-level mutex.
type Manager struct {
	cfg  Config
	rank int32
	size int

	listener net.Listener
	peers    map[int]*peerTransport
	engine   *matchEngine

	tagSpaceNext int32 // next private tag-space offset handed to Comm.Dup
	world        *Comm

	finalized atomic.Bool
}

var (
	globalMu sync.Mutex
	global   *Manager
)

// Init reads identity from the environment (or an explicit cfg when
// provided via InitWithConfig), binds a listener on loopback, and forms
// the full mesh of peer transports. It returns only once every ordered
// pair of ranks has a ready transport, or fails with a connection error.
func Init() error {
	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	return InitWithConfig(cfg)
}

// InitWithConfig is Init with an explicit Config, bypassing environment
// variable parsing; tests and embedders that already know their rank/size
// use this entry point.
func InitWithConfig(cfg Config) error {
	globalMu.Lock()
	if global != nil {
		globalMu.Unlock()
		return newError(KindAlreadyInitialized, "Init", "", nil)
	}
	globalMu.Unlock()

	cfg = cfg.withDefaults()
	if cfg.Size < 1 {
		return newError(KindInitializationFailed, "Init", "size must be positive", nil)
	}
	if cfg.Rank < 0 || cfg.Rank >= cfg.Size {
		return newError(KindInitializationFailed, "Init", "rank out of range", nil)
	}

	m := &Manager{
		cfg:    cfg,
		rank:   int32(cfg.Rank),
		size:   cfg.Size,
		peers:  make(map[int]*peerTransport),
		engine: newMatchEngine(cfg.Metrics),
	}
	m.world = &Comm{mgr: m, tagOffset: 0}
	m.tagSpaceNext = tagSpaceStride

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.PortBase+cfg.Rank)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return newError(KindConnection, "Init", "listen "+addr, err)
	}
	m.listener = listener

	if cfg.Size > 1 {
		if err := m.formMesh(); err != nil {
			listener.Close()
			return err
		}
	}

	globalMu.Lock()
	global = m
	globalMu.Unlock()
	cfg.Logger.Debugw("mpi initialized", "rank", cfg.Rank, "size", cfg.Size)
	return nil
}

// formMesh dials every higher-ranked peer and accepts a connection from
// every lower-ranked peer, so that exactly one TCP connection exists per
// unordered pair of ranks (dialer = the lower rank), using a port-by-rank
// addressing scheme with a plain identity handshake.
func (m *Manager) formMesh() error {
	type result struct {
		rank int
		conn net.Conn
		err  error
	}

	numAcceptors := int(m.rank) // ranks below us dial us
	numDialers := m.size - int(m.rank) - 1

	results := make(chan result, numAcceptors+numDialers)
	var wg sync.WaitGroup

	if numAcceptors > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < numAcceptors; i++ {
				conn, err := m.listener.Accept()
				if err != nil {
					results <- result{err: err}
					continue
				}
				remoteRank, err := readHandshake(conn)
				if err != nil {
					conn.Close()
					results <- result{err: err}
					continue
				}
				results <- result{rank: remoteRank, conn: conn}
			}
		}()
	}

	for p := int(m.rank) + 1; p < m.size; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			conn, err := m.dialWithRetry(p)
			if err != nil {
				results <- result{err: err}
				return
			}
			if err := writeHandshake(conn, m.rank); err != nil {
				conn.Close()
				results <- result{err: err}
				return
			}
			results <- result{rank: p, conn: conn}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
		close(results)
	}()

	timeout := m.cfg.InitTimeout
	var timer *time.Timer
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		timeoutCh = timer.C
		defer timer.Stop()
	}

	var firstErr error
	received := 0
	want := numAcceptors + numDialers
	for received < want {
		select {
		case r, ok := <-results:
			if !ok {
				goto drained
			}
			received++
			if r.err != nil {
				if firstErr == nil {
					firstErr = r.err
				}
				continue
			}
			m.peers[r.rank] = newPeerTransport(m.rank, r.rank, r.conn, m.engine, m.cfg.Logger, m.cfg.Metrics)
		case <-timeoutCh:
			return newError(KindConnection, "Init", "timed out forming full mesh", nil)
		}
	}
drained:
	if firstErr != nil {
		return newError(KindConnection, "Init", "full mesh connect failed", firstErr)
	}
	if len(m.peers) != m.size-1 {
		return newError(KindConnection, "Init", "incomplete mesh", nil)
	}
	return nil
}

func (m *Manager) dialWithRetry(remoteRank int) (net.Conn, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", m.cfg.PortBase+remoteRank)
	deadline := time.Now().Add(m.cfg.InitTimeout)
	backoff := 50 * time.Millisecond
	for {
		conn, err := net.DialTimeout("tcp", addr, m.cfg.DialTimeout)
		if err == nil {
			return conn, nil
		}
		if m.cfg.InitTimeout > 0 && time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

// handshake is a 4-byte little-endian rank, sent by the dialer right
// after connecting so the acceptor can learn which rank reached it.
func writeHandshake(conn net.Conn, rank int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(rank))
	_, err := conn.Write(buf[:])
	return err
}

func readHandshake(conn net.Conn) (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		return 0, err
	}
	return int(int32(binary.LittleEndian.Uint32(buf[:]))), nil
}

// Finalize drains pending sends, closes every transport and the listener,
// clears UQ/PRQ (surfacing a communication error on any still-pending
// receives), and marks the singleton unavailable. Finalize is not
// idempotent: after the first success, a second call fails with
// not-initialized.
func Finalize() error {
	globalMu.Lock()
	m := global
	globalMu.Unlock()
	if m == nil {
		return newError(KindNotInitialized, "Finalize", "", nil)
	}
	if !m.finalized.CompareAndSwap(false, true) {
		return newError(KindNotInitialized, "Finalize", "already finalized", nil)
	}

	m.engine.mu.Lock()
	for _, r := range m.engine.prq {
		r.req.complete(Status{}, newError(KindCommunication, "Finalize", "manager finalized with receive still pending", nil))
	}
	m.engine.prq = nil
	m.engine.uq = nil
	m.engine.mu.Unlock()

	for _, p := range m.peers {
		p.close()
	}
	if m.listener != nil {
		m.listener.Close()
	}

	globalMu.Lock()
	global = nil
	globalMu.Unlock()
	return nil
}

// Abort closes every transport without draining and terminates the
// process with the given exit code.
func Abort(code int) {
	globalMu.Lock()
	m := global
	global = nil
	globalMu.Unlock()
	if m != nil {
		for _, p := range m.peers {
			p.conn.Close()
		}
		if m.listener != nil {
			m.listener.Close()
		}
	}
	os.Exit(code)
}

// currentManager returns the active process manager or a not-initialized
// error, used by every package-level convenience function.
func currentManager(op string) (*Manager, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return nil, newError(KindNotInitialized, op, "", nil)
	}
	return global, nil
}
