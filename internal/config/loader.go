package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"inferd/pkg/types"
)

// EngineSettings mirrors engine.EngineConfig for file-based configuration.
// Zero values mean "unspecified" and will be replaced by engine defaults.
type EngineSettings struct {
	PrepareWorkers     int `json:"prepare_workers" yaml:"prepare_workers" toml:"prepare_workers"`
	InferWorkers       int `json:"infer_workers" yaml:"infer_workers" toml:"infer_workers"`
	InterpretWorkers   int `json:"interpret_workers" yaml:"interpret_workers" toml:"interpret_workers"`
	PendingQueueSize   int `json:"pending_queue_size" yaml:"pending_queue_size" toml:"pending_queue_size"`
	DispatchBatchSize  int `json:"dispatch_batch_size" yaml:"dispatch_batch_size" toml:"dispatch_batch_size"`
	DispatchIntervalMs int `json:"dispatch_interval_ms" yaml:"dispatch_interval_ms" toml:"dispatch_interval_ms"`
	CacheCapacity      int `json:"cache_capacity" yaml:"cache_capacity" toml:"cache_capacity"`
}

// ModelDef declares one model to register at boot.
type ModelDef struct {
	// Stable identifier used by callers.
	ID string `json:"id" yaml:"id" toml:"id"`
	// Builtin runner kind: echo, reverse, upper, checksum.
	Kind string `json:"kind" yaml:"kind" toml:"kind"`
	// Artificial per-inference latency in milliseconds; 0 disables.
	LatencyMs int `json:"latency_ms" yaml:"latency_ms" toml:"latency_ms"`
	// Engine tunables for this model.
	Config types.ModelConfig `json:"config" yaml:"config" toml:"config"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr     string         `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	Engine   EngineSettings `json:"engine" yaml:"engine" toml:"engine"`
	Models   []ModelDef     `json:"models" yaml:"models" toml:"models"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
