package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func checkLoaded(t *testing.T, cfg Config) {
	t.Helper()
	if cfg.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
	if cfg.Engine.InferWorkers != 4 || cfg.Engine.CacheCapacity != 256 {
		t.Fatalf("engine settings = %+v", cfg.Engine)
	}
	if len(cfg.Models) != 1 {
		t.Fatalf("models = %+v", cfg.Models)
	}
	m := cfg.Models[0]
	if m.ID != "echo-1" || m.Kind != "echo" || m.LatencyMs != 5 {
		t.Fatalf("model = %+v", m)
	}
	if !m.Config.BatchingEnabled || m.Config.MaxBatchSize != 4 || m.Config.Priority != 2 {
		t.Fatalf("model config = %+v", m.Config)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "config.yaml", `
addr: ":9090"
log_level: debug
engine:
  infer_workers: 4
  cache_capacity: 256
models:
  - id: echo-1
    kind: echo
    latency_ms: 5
    config:
      batching_enabled: true
      max_batch_size: 4
      priority: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	checkLoaded(t, cfg)
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "config.json", `{
  "addr": ":9090",
  "log_level": "debug",
  "engine": {"infer_workers": 4, "cache_capacity": 256},
  "models": [
    {
      "id": "echo-1",
      "kind": "echo",
      "latency_ms": 5,
      "config": {"batching_enabled": true, "max_batch_size": 4, "priority": 2}
    }
  ]
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	checkLoaded(t, cfg)
}

func TestLoadTOML(t *testing.T) {
	path := writeTemp(t, "config.toml", `
addr = ":9090"
log_level = "debug"

[engine]
infer_workers = 4
cache_capacity = 256

[[models]]
id = "echo-1"
kind = "echo"
latency_ms = 5

[models.config]
batching_enabled = true
max_batch_size = 4
priority = 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load toml: %v", err)
	}
	checkLoaded(t, cfg)
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := writeTemp(t, "config.ini", "addr = :9090\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	bad := writeTemp(t, "bad.json", "{not json")
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}
