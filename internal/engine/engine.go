package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"inferd/pkg/types"
)

// Engine owns the scheduler, the result cache, the pipeline pools and every
// registered model's queue, batcher and tracker. All state lives on the
// instance; lifetime ends at Close.
type Engine struct {
	cfg EngineConfig
	log zerolog.Logger
	pub EventPublisher

	mu     sync.RWMutex
	models map[string]*modelEntry
	closed bool

	sched *scheduler
	cache *resultCache
	opt   *optimizer

	prepareCh   chan *Task
	interpretCh chan *Task
	// inferSem bounds concurrent model invocations engine-wide.
	inferSem *semaphore.Weighted

	runCtx    context.Context
	runCancel context.CancelFunc
	grp       errgroup.Group
	closeOnce sync.Once
	startTime time.Time
}

func newEngine(cfg EngineConfig, log zerolog.Logger, pub EventPublisher) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:         cfg,
		log:         log,
		pub:         pub,
		models:      make(map[string]*modelEntry),
		sched:       newScheduler(),
		cache:       newResultCache(cfg.CacheCapacity),
		opt:         newOptimizer(),
		prepareCh:   make(chan *Task, cfg.PendingQueueSize),
		interpretCh: make(chan *Task, cfg.PendingQueueSize),
		inferSem:    semaphore.NewWeighted(int64(cfg.InferWorkers)),
		runCtx:      ctx,
		runCancel:   cancel,
		startTime:   time.Now(),
	}
}

func (e *Engine) lookup(modelID string) (*modelEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.models[modelID]
	return ent, ok
}

// Execute submits one task against a registered model. The cache is probed
// first; on a hit the returned future is already resolved. An unregistered
// model id fails synchronously, not via the future.
func (e *Engine) Execute(modelID string, input []byte, kind types.OutputKind, priority int) (*Future, error) {
	if kind == "" {
		kind = types.OutputText
	}
	if !kind.Valid() {
		return nil, badKindError{kind: string(kind)}
	}
	e.mu.RLock()
	closed := e.closed
	_, ok := e.models[modelID]
	e.mu.RUnlock()
	if closed {
		return nil, closedError{what: "engine"}
	}
	if !ok {
		return nil, unknownModelError{id: modelID}
	}

	if res, hit := e.cache.get(Fingerprint(modelID, input)); hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return newCachedFuture(res), nil
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()

	t := newTask(modelID, input, kind, priority)
	e.sched.submit(t)
	tasksSubmittedTotal.WithLabelValues(modelID).Inc()
	return t.future, nil
}

// ExecuteMultiple submits one task per model id, all sharing the input and
// priority, ordered by the runtime optimizer. The aggregate future resolves
// once every constituent has contributed, or fails on the first constituent
// error with partial results discarded.
func (e *Engine) ExecuteMultiple(modelIDs []string, input []byte, kind types.OutputKind, priority int) (*MultiFuture, error) {
	if kind == "" {
		kind = types.OutputText
	}
	if !kind.Valid() {
		return nil, badKindError{kind: string(kind)}
	}
	if len(modelIDs) == 0 {
		return nil, unknownModelError{id: "(none)"}
	}
	e.mu.RLock()
	closed := e.closed
	var missing string
	for _, id := range modelIDs {
		if _, ok := e.models[id]; !ok {
			missing = id
			break
		}
	}
	e.mu.RUnlock()
	if closed {
		return nil, closedError{what: "engine"}
	}
	if missing != "" {
		return nil, unknownModelError{id: missing}
	}

	mf := newMultiFuture(len(modelIDs))
	for _, id := range e.opt.order(modelIDs) {
		if res, hit := e.cache.get(Fingerprint(id, input)); hit {
			cacheLookupsTotal.WithLabelValues("hit").Inc()
			mf.contribute(id, res)
			continue
		}
		cacheLookupsTotal.WithLabelValues("miss").Inc()
		t := newTask(id, input, kind, priority)
		t.multi = mf
		e.sched.submit(t)
		tasksSubmittedTotal.WithLabelValues(id).Inc()
	}
	return mf, nil
}

// ProcessPendingTasks pulls the next batch of ready tasks from the scheduler
// and hands them to the prepare pool. It must be driven repeatedly, either
// by Run's internal loop or by the caller; absent it, submitted work never
// progresses. Returns the number of tasks dispatched.
func (e *Engine) ProcessPendingTasks() int {
	batch := e.sched.nextBatch(e.cfg.DispatchBatchSize)
	for _, t := range batch {
		select {
		case e.prepareCh <- t:
		case <-e.runCtx.Done():
			e.failTask(t, closedError{what: "engine"})
		}
	}
	return len(batch)
}

// Run starts the internal driving loop. It returns immediately; the loop
// exits when ctx is done or the engine is closed.
func (e *Engine) Run(ctx context.Context) {
	e.grp.Go(func() error {
		ticker := time.NewTicker(e.cfg.DispatchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-e.runCtx.Done():
				return nil
			case <-ticker.C:
				e.ProcessPendingTasks()
			}
		}
	})
}

// GetPerformanceStats returns the timing aggregate for one model; ok is
// false for unknown models or models with no samples yet.
func (e *Engine) GetPerformanceStats(modelID string) (types.ModelStats, bool) {
	ent, ok := e.lookup(modelID)
	if !ok {
		return types.ModelStats{}, false
	}
	return ent.tracker.stats()
}

// GetOverallPerformanceStats returns per-model aggregates plus cache
// counters and the registered model count.
func (e *Engine) GetOverallPerformanceStats() types.OverallStats {
	e.mu.RLock()
	perModel := make(map[string]types.ModelStats, len(e.models))
	count := len(e.models)
	for id, ent := range e.models {
		if st, ok := ent.tracker.stats(); ok {
			perModel[id] = st
		}
	}
	e.mu.RUnlock()
	return types.OverallStats{
		PerModel:   perModel,
		Cache:      e.cache.stats(),
		ModelCount: count,
	}
}

// OptimizeRuntime refreshes the optimizer's latency table from current
// tracker state. Multi-model ordering uses the table as of the last refresh.
func (e *Engine) OptimizeRuntime() {
	e.mu.RLock()
	table := make(map[string]time.Duration, len(e.models))
	for id, ent := range e.models {
		table[id] = ent.tracker.avgTotal()
	}
	e.mu.RUnlock()
	e.opt.refresh(table)
	e.pub.Publish(Event{Name: "optimize", Fields: map[string]any{"models": len(table)}})
}

// Status reports pipeline occupancy for observability endpoints.
func (e *Engine) Status() types.StatusResponse {
	e.mu.RLock()
	models := make([]types.ModelStatus, 0, len(e.models))
	for _, ent := range e.models {
		st := types.ModelStatus{
			ModelID:         ent.id,
			QueueLen:        len(ent.queueCh),
			QueueCapacity:   cap(ent.queueCh),
			BatchingEnabled: ent.cfg.BatchingEnabled,
		}
		if ent.batch != nil {
			st.BatchFill = ent.batch.fill()
		}
		models = append(models, st)
	}
	closed := e.closed
	e.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		Models:         models,
		LaneDepths:     e.sched.depths(),
		PendingPrepare: len(e.prepareCh),
		Closed:         closed,
		UptimeSeconds:  int64(now.Sub(e.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

// Models lists registered model ids and their effective configs.
func (e *Engine) Models() []types.ModelInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]types.ModelInfo, 0, len(e.models))
	for id, ent := range e.models {
		out = append(out, types.ModelInfo{ID: id, Config: ent.cfg})
	}
	return out
}

// Close stops accepting new work, stops every worker pool, resolves all
// in-flight tasks with an error and releases model runners. Safe to call
// more than once; only the first call does the work.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		entries := make([]*modelEntry, 0, len(e.models))
		for _, ent := range e.models {
			entries = append(entries, ent)
		}
		e.models = make(map[string]*modelEntry)
		e.mu.Unlock()

		e.runCancel()
		_ = e.grp.Wait()

		cause := closedError{what: "engine"}
		for _, t := range e.sched.drain() {
			e.failTask(t, cause)
		}
		for _, t := range drainTasks(e.prepareCh) {
			e.failTask(t, cause)
		}
		for _, ent := range entries {
			ent.shutdown(e, cause)
		}
		for _, t := range drainTasks(e.interpretCh) {
			e.failTask(t, cause)
		}
		e.cache.purge()

		e.pub.Publish(Event{Name: "engine_closed", Fields: map[string]any{"models": len(entries)}})
		e.log.Info().Int("models", len(entries)).Msg("engine closed")
	})
	return nil
}

// drainTasks empties ch without blocking.
func drainTasks(ch chan *Task) []*Task {
	var out []*Task
	for {
		select {
		case t := <-ch:
			out = append(out, t)
		default:
			return out
		}
	}
}
