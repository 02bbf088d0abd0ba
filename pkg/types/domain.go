package types

// OutputKind selects how a model's raw output buffer is interpreted for the
// caller. It is a closed tag set rather than a runtime type assertion.
type OutputKind string

const (
	// OutputText interprets the raw buffer as UTF-8 text.
	OutputText OutputKind = "text"
	// OutputBytes returns the raw buffer unchanged.
	OutputBytes OutputKind = "bytes"
	// OutputFloats interprets the raw buffer as a comma-separated list of
	// float64 values (the builtin runners emit this shape).
	OutputFloats OutputKind = "floats"
)

// Valid reports whether k is one of the recognized output kinds.
func (k OutputKind) Valid() bool {
	switch k {
	case OutputText, OutputBytes, OutputFloats:
		return true
	}
	return false
}

// Result is the typed outcome of one model invocation. Exactly one of the
// payload fields is populated, selected by Kind.
type Result struct {
	// Which payload field carries the value.
	// example: text
	Kind OutputKind `json:"kind" example:"text"`
	// Text payload (Kind == "text").
	Text string `json:"text,omitempty"`
	// Raw payload (Kind == "bytes").
	Bytes []byte `json:"bytes,omitempty"`
	// Numeric payload (Kind == "floats").
	Floats []float64 `json:"floats,omitempty"`
}

// ModelConfig holds the per-model tunables recognized by the engine.
// Acceleration hints are carried but never interpreted by engine logic.
type ModelConfig struct {
	// Enable opportunistic batching for this model.
	// example: true
	BatchingEnabled bool `json:"batching_enabled" yaml:"batching_enabled" toml:"batching_enabled"`
	// Number of tasks accumulated before a batched invocation fires.
	// example: 4
	MaxBatchSize int `json:"max_batch_size" yaml:"max_batch_size" toml:"max_batch_size"`
	// Capacity of the model's execution queue.
	// example: 32
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity" toml:"queue_capacity"`
	// Suggested number of inference workers dedicated to this model.
	// example: 1
	InferenceWorkerHint int `json:"inference_worker_hint" yaml:"inference_worker_hint" toml:"inference_worker_hint"`
	// Default priority applied when a request omits one (0 lowest .. 3 highest).
	// example: 1
	Priority int `json:"priority" yaml:"priority" toml:"priority"`
	// Opaque acceleration hints passed through to the runner.
	AccelerationHints []string `json:"acceleration_hints,omitempty" yaml:"acceleration_hints" toml:"acceleration_hints"`
}

// ModelStats is the aggregated timing view for one model.
type ModelStats struct {
	// Number of completed invocations.
	// example: 42
	Count uint64 `json:"count" example:"42"`
	// Average per-stage durations in milliseconds, computed on read.
	AvgPrepareMs   float64 `json:"avg_prepare_ms"`
	AvgInferMs     float64 `json:"avg_infer_ms"`
	AvgInterpretMs float64 `json:"avg_interpret_ms"`
	// Average, minimum and maximum total duration in milliseconds.
	AvgTotalMs float64 `json:"avg_total_ms"`
	MinTotalMs float64 `json:"min_total_ms"`
	MaxTotalMs float64 `json:"max_total_ms"`
}

// CacheStats summarizes result-cache effectiveness.
type CacheStats struct {
	// Current number of cached entries.
	// example: 100
	Size int `json:"size" example:"100"`
	// Configured maximum number of entries.
	// example: 128
	Capacity int `json:"capacity" example:"128"`
	// Lookup counters since startup.
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	// Number of entries evicted to make room.
	Evictions uint64 `json:"evictions"`
}

// OverallStats is the engine-wide view returned by GetOverallPerformanceStats.
type OverallStats struct {
	// Per-model aggregates, keyed by model id. Models with no samples are omitted.
	PerModel map[string]ModelStats `json:"per_model"`
	// Result cache counters.
	Cache CacheStats `json:"cache"`
	// Number of registered models.
	// example: 3
	ModelCount int `json:"model_count" example:"3"`
}
