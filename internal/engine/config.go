package engine

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding EngineConfig fields are unset.
// Prepare and interpret are light transform stages and run with a small
// fixed worker count; infer is compute-bound and sized to the host.
const (
	defaultPrepareWorkers    = 2
	defaultInterpretWorkers  = 2
	defaultPendingQueueSize  = 64
	defaultDispatchBatchSize = 8
	defaultCacheCapacity     = 128
	defaultDispatchInterval  = 5 * time.Millisecond
	defaultQueueCapacity     = 32
	defaultWorkerHint        = 1
)

// EngineConfig encapsulates all tunables for Engine construction.
type EngineConfig struct {
	// Worker counts per pipeline stage. InferWorkers bounds concurrent model
	// invocations engine-wide; per-model parallelism comes from each model's
	// InferenceWorkerHint.
	PrepareWorkers   int
	InferWorkers     int
	InterpretWorkers int

	// PendingQueueSize caps tasks handed off from the scheduler to the
	// prepare pool but not yet picked up.
	PendingQueueSize int
	// DispatchBatchSize caps tasks moved per ProcessPendingTasks call.
	DispatchBatchSize int
	// DispatchInterval is the period of the internal driving loop started by
	// Run.
	DispatchInterval time.Duration

	// CacheCapacity is the maximum number of entries in the result cache.
	CacheCapacity int

	// Logger, when set, receives engine lifecycle and error logs.
	Logger *zerolog.Logger
	// Publisher, when set, receives lifecycle events. Defaults to a no-op.
	Publisher EventPublisher
}

// New constructs an Engine from cfg, applies defaults, and starts the
// prepare/interpret pools. Inference workers are started per model at
// registration time.
func New(cfg EngineConfig) *Engine {
	if cfg.PrepareWorkers <= 0 {
		cfg.PrepareWorkers = defaultPrepareWorkers
	}
	if cfg.InterpretWorkers <= 0 {
		cfg.InterpretWorkers = defaultInterpretWorkers
	}
	if cfg.InferWorkers <= 0 {
		cfg.InferWorkers = runtime.NumCPU()
	}
	if cfg.PendingQueueSize <= 0 {
		cfg.PendingQueueSize = defaultPendingQueueSize
	}
	if cfg.DispatchBatchSize <= 0 {
		cfg.DispatchBatchSize = defaultDispatchBatchSize
	}
	if cfg.DispatchInterval <= 0 {
		cfg.DispatchInterval = defaultDispatchInterval
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = defaultCacheCapacity
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	var pub EventPublisher = noopPublisher{}
	if cfg.Publisher != nil {
		pub = cfg.Publisher
	}
	e := newEngine(cfg, log, pub)
	e.startPools()
	return e
}
