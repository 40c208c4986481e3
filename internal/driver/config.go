package driver

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// AnalysisConfig управляет самим region-анализом.
type AnalysisConfig struct {
	// DeferredThreadSafetyChecking enables the pass. Modules additionally
	// have to declare the marker protocol; both gates must hold.
	DeferredThreadSafetyChecking bool `toml:"deferred-thread-safety-checking"`

	// RequirementsPerSend caps reported access sites per send (0 = default 5).
	RequirementsPerSend int `toml:"requirements-per-send"`

	// MaxDiagnostics bounds the diagnostic bag per module.
	MaxDiagnostics int `toml:"max-diagnostics"`

	// Jobs bounds parallel per-function checking (0 = GOMAXPROCS).
	Jobs int `toml:"jobs"`
}

// TraceConfig mirrors trace.Config for the parts a config file can set.
type TraceConfig struct {
	Level     string `toml:"level"`     // off|error|phase|detail|debug
	Mode      string `toml:"mode"`      // stream|ring|both
	Output    string `toml:"output"`    // file path, "-" for stderr
	Heartbeat string `toml:"heartbeat"` // liveness tick interval, e.g. "30s" (empty = off)
}

// CacheConfig управляет дисковым кэшем результатов.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // empty = XDG_CACHE_HOME/regionck
}

// Config is the parsed regionck.toml.
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Trace    TraceConfig    `toml:"trace"`
	Cache    CacheConfig    `toml:"cache"`
}

// DefaultConfig returns the configuration used when no file is present:
// the pass is on (modules still gate themselves via features) and
// diagnostics are bounded.
func DefaultConfig() Config {
	return Config{
		Analysis: AnalysisConfig{
			DeferredThreadSafetyChecking: true,
			MaxDiagnostics:               256,
		},
		Trace: TraceConfig{Level: "off", Mode: "ring"},
	}
}

// LoadConfig parses a regionck.toml. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%s: unknown config key %q", path, undecoded[0].String())
	}
	if cfg.Analysis.MaxDiagnostics <= 0 {
		cfg.Analysis.MaxDiagnostics = DefaultConfig().Analysis.MaxDiagnostics
	}
	if cfg.Analysis.Jobs < 0 {
		return cfg, fmt.Errorf("%s: analysis.jobs must be >= 0, got %d", path, cfg.Analysis.Jobs)
	}
	if cfg.Trace.Heartbeat != "" {
		if _, err := time.ParseDuration(cfg.Trace.Heartbeat); err != nil {
			return cfg, fmt.Errorf("%s: trace.heartbeat: %w", path, err)
		}
	}
	return cfg, nil
}

// HeartbeatInterval returns the parsed heartbeat interval, zero when unset.
// LoadConfig already rejected malformed values.
func (c TraceConfig) HeartbeatInterval() time.Duration {
	if c.Heartbeat == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Heartbeat)
	if err != nil {
		return 0
	}
	return d
}
