package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regionck.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	def := DefaultConfig()
	if cfg != def {
		t.Errorf("got %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadConfigParses(t *testing.T) {
	path := writeConfig(t, `
[analysis]
deferred-thread-safety-checking = false
requirements-per-send = 3
max-diagnostics = 42
jobs = 2

[trace]
level = "detail"
mode = "stream"
output = "-"

[cache]
enabled = true
dir = "/tmp/rc"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Analysis.DeferredThreadSafetyChecking {
		t.Error("gate should parse as disabled")
	}
	if cfg.Analysis.RequirementsPerSend != 3 || cfg.Analysis.MaxDiagnostics != 42 || cfg.Analysis.Jobs != 2 {
		t.Errorf("analysis section mismatch: %+v", cfg.Analysis)
	}
	if cfg.Trace.Level != "detail" || cfg.Trace.Mode != "stream" || cfg.Trace.Output != "-" {
		t.Errorf("trace section mismatch: %+v", cfg.Trace)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != "/tmp/rc" {
		t.Errorf("cache section mismatch: %+v", cfg.Cache)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[analysis]\nspeed = 11\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("unknown key must be rejected")
	}
}

func TestLoadConfigRejectsNegativeJobs(t *testing.T) {
	path := writeConfig(t, "[analysis]\njobs = -1\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("negative jobs must be rejected")
	}
}

func TestLoadConfigHeartbeat(t *testing.T) {
	path := writeConfig(t, "[trace]\nheartbeat = \"30s\"\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Trace.HeartbeatInterval(); got != 30*time.Second {
		t.Errorf("heartbeat interval = %v, want 30s", got)
	}
	if DefaultConfig().Trace.HeartbeatInterval() != 0 {
		t.Error("unset heartbeat must be zero")
	}

	bad := writeConfig(t, "[trace]\nheartbeat = \"soon\"\n")
	if _, err := LoadConfig(bad); err == nil {
		t.Error("malformed heartbeat must be rejected")
	}
}

func TestLoadConfigZeroMaxDiagnosticsFallsBack(t *testing.T) {
	path := writeConfig(t, "[analysis]\nmax-diagnostics = 0\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Analysis.MaxDiagnostics != DefaultConfig().Analysis.MaxDiagnostics {
		t.Errorf("max-diagnostics = %d, want default", cfg.Analysis.MaxDiagnostics)
	}
}
