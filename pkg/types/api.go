package types

// ExecuteRequest is the payload for POST /infer.
type ExecuteRequest struct {
	// Identifier of the registered model to invoke.
	// example: sentiment-small
	Model string `json:"model" example:"sentiment-small"`
	// Opaque input handed to the model's prepare stage.
	// example: the quick brown fox
	Input string `json:"input" example:"the quick brown fox"`
	// Requested output kind: text, bytes or floats.
	// example: text
	OutputKind OutputKind `json:"output_kind,omitempty" example:"text"`
	// Priority lane 0 (lowest) .. 3 (highest). Omitted: the model's default.
	// example: 2
	Priority *int `json:"priority,omitempty" example:"2"`
	// How long the server waits for the result before answering 504.
	// example: 2000
	WaitMs int `json:"wait_ms,omitempty" example:"2000"`
}

// ExecuteMultiRequest is the payload for POST /infer/multi.
type ExecuteMultiRequest struct {
	// Models to invoke against the shared input.
	// example: ["sentiment-small","toxicity-v2"]
	Models []string `json:"models" example:"[\"sentiment-small\",\"toxicity-v2\"]"`
	// Opaque input shared by every constituent invocation.
	Input string `json:"input"`
	// Requested output kind for every constituent result.
	// example: text
	OutputKind OutputKind `json:"output_kind,omitempty" example:"text"`
	// Priority lane shared by every constituent task.
	// example: 1
	Priority *int `json:"priority,omitempty" example:"1"`
	// How long the server waits for the aggregate before answering 504.
	// example: 5000
	WaitMs int `json:"wait_ms,omitempty" example:"5000"`
}

// ExecuteResponse wraps a single-model result.
type ExecuteResponse struct {
	// Model that produced the result.
	// example: sentiment-small
	Model string `json:"model" example:"sentiment-small"`
	// Typed result value.
	Result Result `json:"result"`
	// True when the result was served from the cache without scheduling.
	// example: false
	Cached bool `json:"cached" example:"false"`
}

// ExecuteMultiResponse wraps an aggregate multi-model result.
type ExecuteMultiResponse struct {
	// Per-model results, keyed by model id.
	Results map[string]Result `json:"results"`
}

// ModelInfo describes one registered model for GET /models.
type ModelInfo struct {
	// Stable identifier for the model.
	// example: sentiment-small
	ID string `json:"id" example:"sentiment-small"`
	// Effective per-model configuration.
	Config ModelConfig `json:"config"`
}

// ModelsResponse wraps the list returned by GET /models.
type ModelsResponse struct {
	// Registered models.
	Models []ModelInfo `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unknown model: sentiment-small
	Error string `json:"error" example:"unknown model: sentiment-small"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// ModelStatus summarizes one model's pipeline occupancy for GET /status.
type ModelStatus struct {
	// ID of the model.
	// example: sentiment-small
	ModelID string `json:"model_id" example:"sentiment-small"`
	// Tasks waiting in the model's execution queue.
	// example: 3
	QueueLen int `json:"queue_len" example:"3"`
	// Capacity of the execution queue.
	// example: 32
	QueueCapacity int `json:"queue_capacity" example:"32"`
	// Tasks currently held by the model's batcher (0 when batching is off).
	// example: 2
	BatchFill int `json:"batch_fill" example:"2"`
	// Whether batching is enabled for the model.
	// example: true
	BatchingEnabled bool `json:"batching_enabled" example:"true"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Per-model pipeline occupancy.
	Models []ModelStatus `json:"models"`
	// Tasks waiting per priority lane, index 0 (lowest) .. 3 (highest).
	LaneDepths [4]int `json:"lane_depths"`
	// Tasks dispatched to the prepare stage but not yet picked up.
	// example: 0
	PendingPrepare int `json:"pending_prepare" example:"0"`
	// Whether the engine still accepts work.
	// example: false
	Closed bool `json:"closed" example:"false"`
	// Uptime of the engine in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
