package mpi

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names read by FromEnv. Names are this
// implementation's choice; the three roles (size, rank, port base) are
// mandatory.
const (
	EnvSize     = "GOMPI_SIZE"
	EnvRank     = "GOMPI_RANK"
	EnvPortBase = "GOMPI_PORT_BASE"
)

const defaultPortBase = 49152

// Config controls Init's behavior: identity (size, rank), the loopback
// port scheme, mesh-formation timeouts, and the pluggable
// logging/metrics/tracing hooks.
type Config struct {
	// Size is the total number of ranks. Defaults to 1 (single-process
	// mode) when zero.
	Size int
	// Rank is this process's rank in [0, Size). Defaults to 0.
	Rank int
	// PortBase is the loopback TCP port base; rank r listens on
	// PortBase+r. Defaults to 49152.
	PortBase int
	// DialTimeout bounds each individual dial attempt while forming the
	// full mesh.
	DialTimeout time.Duration
	// InitTimeout bounds the total time Init will wait for the full mesh
	// to become ready. Defaults to 10s when zero.
	InitTimeout time.Duration

	Logger  StructuredLogger
	Metrics MetricHook
	Tracer  Tracer
}

// FromEnv builds a Config from GOMPI_SIZE, GOMPI_RANK, and GOMPI_PORT_BASE,
// defaulting to a single-process job (size=1, rank=0) when the variables
// are absent.
func FromEnv() (Config, error) {
	cfg := Config{
		Size:        1,
		Rank:        0,
		PortBase:    defaultPortBase,
		DialTimeout: 10 * time.Second,
		InitTimeout: 10 * time.Second,
	}

	if v := os.Getenv(EnvSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, newError(KindInitializationFailed, "FromEnv", EnvSize+" must be a positive integer", err)
		}
		cfg.Size = n
	}
	if v := os.Getenv(EnvRank); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, newError(KindInitializationFailed, "FromEnv", EnvRank+" must be a non-negative integer", err)
		}
		cfg.Rank = n
	}
	if v := os.Getenv(EnvPortBase); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 65535 {
			return Config{}, newError(KindInitializationFailed, "FromEnv", EnvPortBase+" must be a valid port number", err)
		}
		cfg.PortBase = n
	}
	if cfg.Rank >= cfg.Size {
		return Config{}, newError(KindInitializationFailed, "FromEnv", "rank must be less than size", nil)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Size == 0 {
		c.Size = 1
	}
	if c.PortBase == 0 {
		c.PortBase = defaultPortBase
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = noopMetrics{}
	}
	if c.Tracer == nil {
		c.Tracer = noopTracer{}
	}
	return c
}
