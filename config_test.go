package mpi

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvSize, "")
	t.Setenv(EnvRank, "")
	t.Setenv(EnvPortBase, "")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Size != 1 || cfg.Rank != 0 || cfg.PortBase != defaultPortBase {
		t.Fatalf("got %+v, want size=1 rank=0 portBase=%d", cfg, defaultPortBase)
	}
}

func TestFromEnvExplicit(t *testing.T) {
	t.Setenv(EnvSize, "4")
	t.Setenv(EnvRank, "2")
	t.Setenv(EnvPortBase, "60000")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Size != 4 || cfg.Rank != 2 || cfg.PortBase != 60000 {
		t.Fatalf("got %+v", cfg)
	}
}

func TestFromEnvRejectsRankBeyondSize(t *testing.T) {
	t.Setenv(EnvSize, "2")
	t.Setenv(EnvRank, "5")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected an error when rank >= size")
	}
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv(EnvSize, "not-a-number")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected an error parsing a non-numeric GOMPI_SIZE")
	}
}

func TestWithDefaultsFillsNoopInterfaces(t *testing.T) {
	cfg := Config{Size: 1}.withDefaults()
	if cfg.Logger == nil || cfg.Metrics == nil || cfg.Tracer == nil {
		t.Fatalf("withDefaults left a nil interface: %+v", cfg)
	}
	if cfg.DialTimeout == 0 || cfg.InitTimeout == 0 {
		t.Fatalf("withDefaults left a zero timeout: %+v", cfg)
	}
}
