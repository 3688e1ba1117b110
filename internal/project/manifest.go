package project

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"retrace/internal/trace"
)

// Manifest ties a parsed retrace.toml to the directory it was found in.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config is the retrace.toml schema. Every section is optional; zero
// values mean "use the built-in default".
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Serve  ServeConfig  `toml:"serve"`
	Trace  TraceConfig  `toml:"trace"`
}

type EngineConfig struct {
	HotspotThreshold int `toml:"hotspot_threshold"`
	EvalTimeoutMS    int `toml:"eval_timeout_ms"`
	MaxSteps         int `toml:"max_steps"`
}

type ServeConfig struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// Load walks up from startDir, parses the nearest retrace.toml and returns
// it. ok is false when no manifest exists, which is not an error.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := parseConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func parseConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("engine", "hotspot_threshold") && cfg.Engine.HotspotThreshold < 0 {
		return Config{}, fmt.Errorf("%s: [engine].hotspot_threshold must not be negative", path)
	}
	if meta.IsDefined("engine", "eval_timeout_ms") && cfg.Engine.EvalTimeoutMS < 0 {
		return Config{}, fmt.Errorf("%s: [engine].eval_timeout_ms must not be negative", path)
	}
	if meta.IsDefined("engine", "max_steps") && cfg.Engine.MaxSteps < 0 {
		return Config{}, fmt.Errorf("%s: [engine].max_steps must not be negative", path)
	}
	if meta.IsDefined("trace", "level") {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			return Config{}, fmt.Errorf("%s: [trace].level: %w", path, err)
		}
	}
	return cfg, nil
}

// EvalTimeout converts the millisecond setting to a duration.
func (c EngineConfig) EvalTimeout() time.Duration {
	return time.Duration(c.EvalTimeoutMS) * time.Millisecond
}

// StaticPath resolves [serve].static_dir against the manifest root when it
// is relative. Empty stays empty.
func (m *Manifest) StaticPath() string {
	dir := m.Config.Serve.StaticDir
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, dir)
}
