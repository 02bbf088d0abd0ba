package engine

import (
	"fmt"
	"time"
)

// startPools launches the prepare and interpret pools. Inference workers are
// per-model (started at registration) and bounded engine-wide by inferSem,
// so the infer stage can be sized to the hardware independently of the two
// lighter transform stages.
func (e *Engine) startPools() {
	for i := 0; i < e.cfg.PrepareWorkers; i++ {
		e.grp.Go(func() error {
			e.prepareLoop()
			return nil
		})
	}
	for i := 0; i < e.cfg.InterpretWorkers; i++ {
		e.grp.Go(func() error {
			e.interpretLoop()
			return nil
		})
	}
}

func (e *Engine) prepareLoop() {
	for {
		select {
		case <-e.runCtx.Done():
			return
		case t := <-e.prepareCh:
			e.runPrepare(t)
		}
	}
}

// runPrepare transforms the task's opaque input into a model-ready buffer
// and enqueues it on the model's execution queue. The enqueue blocks when
// the queue is full, which is how a slow infer stage throttles prepare.
func (e *Engine) runPrepare(t *Task) {
	ent, ok := e.lookup(t.modelID)
	if !ok {
		e.failTask(t, closedError{what: "model " + t.modelID})
		return
	}
	if !t.begin(StatePreparing) {
		return
	}
	start := time.Now()
	prepared, err := ent.runner.Prepare(e.runCtx, t.input)
	t.prepareDur = time.Since(start)
	stageDuration.WithLabelValues("prepare").Observe(t.prepareDur.Seconds())
	if err != nil {
		e.failTask(t, stageError{stage: "prepare", modelID: t.modelID, err: err})
		return
	}
	t.prepared = prepared
	if !t.begin(StateQueuedInfer) {
		// cancelled while preparing
		return
	}
	select {
	case ent.queueCh <- t:
	case <-ent.done:
		e.failTask(t, closedError{what: "model " + t.modelID})
	case <-e.runCtx.Done():
		e.failTask(t, closedError{what: "engine"})
	}
}

// modelWorker consumes one model's execution queue. Non-batched models are
// invoked directly; batched models feed the model's batcher, which fires
// once full.
func (e *Engine) modelWorker(ent *modelEntry) {
	for {
		select {
		case <-e.runCtx.Done():
			return
		case <-ent.done:
			return
		case t := <-ent.queueCh:
			if ent.cfg.BatchingEnabled {
				if !t.begin(StateBatching) {
					continue
				}
				if batch := ent.batch.add(t); batch != nil {
					e.runBatch(ent, batch)
				}
			} else {
				e.runInfer(ent, t)
			}
		}
	}
}

func (e *Engine) runInfer(ent *modelEntry, t *Task) {
	// last cancellation point: once Inferring, the task runs to completion
	if !t.begin(StateInferring) {
		return
	}
	if err := e.inferSem.Acquire(e.runCtx, 1); err != nil {
		e.failTask(t, closedError{what: "engine"})
		return
	}
	start := time.Now()
	raw, err := ent.runner.Infer(e.runCtx, t.prepared)
	e.inferSem.Release(1)
	t.inferDur = time.Since(start)
	stageDuration.WithLabelValues("infer").Observe(t.inferDur.Seconds())
	if err != nil {
		e.failTask(t, stageError{stage: "infer", modelID: ent.id, err: err})
		return
	}
	t.raw = raw
	e.toInterpret(t)
}

// runBatch executes one batched invocation and routes each output slice back
// to its originating task positionally.
func (e *Engine) runBatch(ent *modelEntry, batch []*Task) {
	live := make([]*Task, 0, len(batch))
	for _, t := range batch {
		if t.begin(StateInferring) {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return
	}
	if err := e.inferSem.Acquire(e.runCtx, 1); err != nil {
		for _, t := range live {
			e.failTask(t, closedError{what: "engine"})
		}
		return
	}
	inputs := make([][]byte, len(live))
	for i, t := range live {
		inputs[i] = t.prepared
	}
	start := time.Now()
	outs, err := ent.runner.InferBatch(e.runCtx, inputs)
	e.inferSem.Release(1)
	elapsed := time.Since(start)
	stageDuration.WithLabelValues("infer").Observe(elapsed.Seconds())
	batchFlushesTotal.WithLabelValues(ent.id).Inc()
	e.pub.Publish(Event{Name: "batch_flush", ModelID: ent.id, Fields: map[string]any{"size": len(live)}})

	if err == nil && len(outs) != len(live) {
		err = fmt.Errorf("batch returned %d outputs for %d inputs", len(outs), len(live))
	}
	if err != nil {
		for _, t := range live {
			e.failTask(t, stageError{stage: "infer", modelID: ent.id, err: err})
		}
		return
	}
	for i, t := range live {
		t.inferDur = elapsed
		t.raw = outs[i]
		e.toInterpret(t)
	}
}

func (e *Engine) toInterpret(t *Task) {
	select {
	case e.interpretCh <- t:
	case <-e.runCtx.Done():
		e.failTask(t, closedError{what: "engine"})
	}
}

func (e *Engine) interpretLoop() {
	for {
		select {
		case <-e.runCtx.Done():
			return
		case t := <-e.interpretCh:
			e.runInterpret(t)
		}
	}
}

// runInterpret converts the raw output into the requested kind, feeds the
// cache and the tracker, and resolves the future.
func (e *Engine) runInterpret(t *Task) {
	ent, ok := e.lookup(t.modelID)
	if !ok {
		e.failTask(t, closedError{what: "model " + t.modelID})
		return
	}
	if !t.begin(StateInterpreting) {
		return
	}
	start := time.Now()
	res, err := ent.runner.Interpret(t.raw, t.outputKind)
	t.interpretDur = time.Since(start)
	stageDuration.WithLabelValues("interpret").Observe(t.interpretDur.Seconds())
	if err != nil {
		e.failTask(t, stageError{stage: "interpret", modelID: t.modelID, err: err})
		return
	}
	e.cache.put(Fingerprint(t.modelID, t.input), res)
	ent.tracker.record(t.prepareDur, t.inferDur, t.interpretDur)
	tasksFinishedTotal.WithLabelValues(t.modelID, "completed").Inc()
	t.complete(res)
}

// failTask logs, counts and resolves a task in the failed state. Stage
// errors never crash a worker; it records and keeps consuming its queue.
func (e *Engine) failTask(t *Task, err error) {
	e.log.Error().Err(err).Str("task", t.id).Str("model", t.modelID).Msg("task failed")
	tasksFinishedTotal.WithLabelValues(t.modelID, "failed").Inc()
	t.fail(err)
}
