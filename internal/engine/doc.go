// Package engine schedules concurrent inference work across registered
// models. It is structured into small files by concern:
//
//   - engine.go: core Engine type, constructor, Run/Close lifecycle.
//   - config.go: EngineConfig and package defaults; New applies defaults.
//   - runner.go: ModelRunner, the opaque compute unit behind each model.
//   - registry.go: RegisterModel/Unregister and model entry ownership.
//   - task.go: Task state machine and stage bookkeeping.
//   - future.go: single-assignment result handles (Future, MultiFuture).
//   - scheduler.go: four strict-priority lanes and batch dispatch.
//   - pipeline.go: prepare/infer/interpret worker pools.
//   - batcher.go: per-model batch accumulation.
//   - cache.go: LRU result cache and input fingerprinting.
//   - perf.go: per-model timing aggregation.
//   - optimizer.go: latency-ordered expansion of multi-model requests.
//   - errors.go: error types and helpers (IsUnknownModel, IsStageFailure, ...).
//   - events.go: lifecycle event publishing.
//   - metrics.go: Prometheus instrumentation.
//
// External packages should treat this package as the scheduling layer and use
// public methods only (New, RegisterModel, Execute, ExecuteMultiple,
// ProcessPendingTasks, GetPerformanceStats, Close). Internal types are
// subject to change.
package engine
