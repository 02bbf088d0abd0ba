package engine

import (
	"sync"

	"inferd/pkg/types"
)

// modelEntry is the registry's per-model allocation: one execution queue, at
// most one batcher, one tracker. The engine is the sole owner; pipeline
// stages reach entries by id lookup, never by retained pointers.
type modelEntry struct {
	id      string
	runner  ModelRunner
	cfg     types.ModelConfig
	queueCh chan *Task
	batch   *batcher
	tracker *perfTracker

	// done stops this model's infer workers; closed exactly once.
	done     chan struct{}
	stopOnce sync.Once
}

// shutdown stops the entry's workers, resolves tasks still held in its queue
// or batcher with cause, and releases the runner. Safe to call more than once.
func (ent *modelEntry) shutdown(e *Engine, cause error) {
	ent.stopOnce.Do(func() {
		close(ent.done)
		for _, t := range drainTasks(ent.queueCh) {
			e.failTask(t, cause)
		}
		if ent.batch != nil {
			for _, t := range ent.batch.takeAll() {
				e.failTask(t, cause)
			}
		}
		if err := ent.runner.Close(); err != nil {
			e.log.Warn().Err(err).Str("model", ent.id).Msg("runner close failed")
		}
	})
}

// RegisterModel adds a model under id. Duplicate ids are rejected with a
// logged error, never overwritten. On success the registry allocates the
// model's execution queue, tracker and (when enabled) batcher, and starts
// its inference workers.
func (e *Engine) RegisterModel(id string, runner ModelRunner, cfg types.ModelConfig) error {
	if id == "" {
		return registrationError{id: "(empty)", reason: "model id must not be empty"}
	}
	if runner == nil {
		return registrationError{id: id, reason: "runner must not be nil"}
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = defaultQueueCapacity
	}
	if cfg.InferenceWorkerHint == 0 {
		cfg.InferenceWorkerHint = defaultWorkerHint
	}
	if cfg.QueueCapacity < 0 {
		return registrationError{id: id, reason: "queue capacity must be positive"}
	}
	if cfg.InferenceWorkerHint < 0 {
		return registrationError{id: id, reason: "inference worker hint must be positive"}
	}
	if cfg.BatchingEnabled && cfg.MaxBatchSize < 1 {
		return registrationError{id: id, reason: "max batch size must be positive when batching is enabled"}
	}
	if cfg.Priority < PriorityMin || cfg.Priority > PriorityMax {
		return registrationError{id: id, reason: "priority out of range 0..3"}
	}

	ent := &modelEntry{
		id:      id,
		runner:  runner,
		cfg:     cfg,
		queueCh: make(chan *Task, cfg.QueueCapacity),
		tracker: newPerfTracker(),
		done:    make(chan struct{}),
	}
	if cfg.BatchingEnabled {
		ent.batch = newBatcher(cfg.MaxBatchSize)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return closedError{what: "engine"}
	}
	if _, exists := e.models[id]; exists {
		e.mu.Unlock()
		err := registrationError{id: id, reason: "duplicate model id"}
		e.log.Error().Str("model", id).Msg("registration rejected: duplicate model id")
		return err
	}
	e.models[id] = ent
	e.mu.Unlock()

	for i := 0; i < cfg.InferenceWorkerHint; i++ {
		e.grp.Go(func() error {
			e.modelWorker(ent)
			return nil
		})
	}

	e.pub.Publish(Event{Name: "model_registered", ModelID: id, Fields: map[string]any{
		"batching": cfg.BatchingEnabled,
		"queue":    cfg.QueueCapacity,
	}})
	e.log.Info().Str("model", id).Bool("batching", cfg.BatchingEnabled).
		Int("queue_capacity", cfg.QueueCapacity).Msg("model registered")
	return nil
}

// Unregister removes a model. Tasks still held by its queue or batcher
// resolve with an error rather than being dropped; tasks already past the
// infer handoff complete normally.
func (e *Engine) Unregister(id string) error {
	e.mu.Lock()
	ent, ok := e.models[id]
	if ok {
		delete(e.models, id)
	}
	e.mu.Unlock()
	if !ok {
		return unknownModelError{id: id}
	}
	ent.shutdown(e, closedError{what: "model " + id})
	e.pub.Publish(Event{Name: "model_unregistered", ModelID: id})
	e.log.Info().Str("model", id).Msg("model unregistered")
	return nil
}
