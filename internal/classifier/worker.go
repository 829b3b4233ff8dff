package classifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Worker owns one Engine and serves work items from the shared request
// channel one at a time. The engine is loaded, used and closed on the
// worker's own goroutine.
type Worker struct {
	id        int
	ch        *RequestChannel
	variant   Variant
	layout    Layout
	maxPixels int
	labels    []string
	spec      EngineSpec
	loader    EngineLoader
	log       zerolog.Logger
	pub       EventPublisher

	mu     sync.RWMutex
	state  State
	engine Engine

	processed atomic.Uint64
	failed    atomic.Uint64
	lastUsed  atomic.Int64
}

func newWorker(id int, ch *RequestChannel, v Variant, cfg Config) *Worker {
	spec := cfg.Engine
	spec.Variant = v
	spec.Layout = cfg.Layout
	spec.Index = id
	return &Worker{
		id:        id,
		ch:        ch,
		variant:   v,
		layout:    cfg.Layout,
		maxPixels: cfg.MaxPixels,
		labels:    cfg.Labels,
		spec:      spec,
		loader:    cfg.Loader,
		log:       cfg.Logger.With().Int("worker", id).Logger(),
		pub:       cfg.Publisher,
		state:     StateLoading,
	}
}

// Run loads the engine and reports the outcome on started (nil once ready).
// It then serves items until the channel is closed and drained or ctx is
// done. Items still pending when ctx ends are answered with ErrClosed.
func (w *Worker) Run(ctx context.Context, started chan<- error) error {
	w.setState(StateLoading)
	eng, err := w.load()
	if err != nil {
		w.setState(StateError)
		err = startupFaultError{err: fmt.Errorf("worker %d: %w", w.id, err)}
		w.log.Error().Err(err).Msg("engine load failed")
		w.pub.Publish(Event{Name: "worker_error", Worker: w.id, Fields: map[string]any{"error": err.Error()}})
		started <- err
		return err
	}
	w.mu.Lock()
	w.engine = eng
	w.mu.Unlock()
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			w.log.Warn().Err(cerr).Msg("engine close failed")
		}
	}()

	w.setState(StateIdle)
	w.log.Info().Str("variant", w.variant.Name).Msg("worker ready")
	w.pub.Publish(Event{Name: "worker_ready", Worker: w.id})
	started <- nil

	for {
		item, ok := w.ch.Dequeue(ctx)
		if !ok {
			break
		}
		w.handle(item)
	}
	if ctx.Err() != nil {
		w.drain()
	}
	w.setState(StateStopped)
	w.log.Info().Uint64("processed", w.processed.Load()).Msg("worker stopped")
	w.pub.Publish(Event{Name: "worker_stopped", Worker: w.id})
	return nil
}

// load calls the loader, converting a panic into an error.
func (w *Worker) load() (eng Engine, err error) {
	defer func() {
		if r := recover(); r != nil {
			eng, err = nil, fmt.Errorf("engine loader panic: %v", r)
		}
	}()
	eng, err = w.loader(w.spec)
	if err == nil && eng == nil {
		err = fmt.Errorf("engine loader returned nil engine")
	}
	return eng, err
}

func (w *Worker) handle(item *WorkItem) {
	start := time.Now()
	queueDepth.Set(float64(w.ch.Len()))
	queueWait.WithLabelValues(w.variant.Name).Observe(start.Sub(item.Enqueued).Seconds())
	w.setState(StateProcessing)
	w.log.Info().Str("request_id", item.ID).Int("bytes", len(item.Payload)).Msg("classify start")
	w.pub.Publish(Event{Name: "classify_start", Worker: w.id, RequestID: item.ID})

	res := w.classify(item)
	res.RequestID = item.ID
	elapsed := time.Since(start)

	kind := Kind(res.Err)
	if res.Err != nil {
		w.failed.Add(1)
		w.log.Warn().Str("request_id", item.ID).Str("kind", kind).Err(res.Err).Dur("elapsed", elapsed).Msg("classify failed")
	} else {
		w.processed.Add(1)
		w.log.Info().Str("request_id", item.ID).Str("cls", res.Label).Float32("conf", res.Confidence).Dur("elapsed", elapsed).Msg("classify end")
	}
	resultsTotal.WithLabelValues(kind).Inc()
	classifyDuration.WithLabelValues(w.variant.Name).Observe(elapsed.Seconds())
	w.lastUsed.Store(time.Now().Unix())
	w.setState(StateIdle)
	w.pub.Publish(Event{Name: "classify_end", Worker: w.id, RequestID: item.ID, Fields: map[string]any{"kind": kind}})

	item.reply.Put(res)
}

// classify runs one item through preprocessing, prediction and ranking. A
// failure or panic while preprocessing is an input error; anything after is
// an engine fault.
func (w *Worker) classify(item *WorkItem) (res Result) {
	preprocessing := true
	defer func() {
		if r := recover(); r != nil {
			perr := fmt.Errorf("panic: %v", r)
			if preprocessing {
				res = Result{Err: inputError{err: perr}}
				return
			}
			res = Result{Err: engineFaultError{err: perr}}
		}
	}()

	input, err := Preprocess(item.Payload, w.variant, w.layout, w.maxPixels)
	if err != nil {
		if !IsInputError(err) {
			err = engineFaultError{err: err}
		}
		return Result{Err: err}
	}
	preprocessing = false

	scores, err := w.engine.Predict(input)
	if err != nil {
		return Result{Err: engineFaultError{err: err}}
	}
	top, err := rank(scores, w.labels, topK)
	if err != nil {
		return Result{Err: engineFaultError{err: err}}
	}
	return Result{Label: top[0].Label, Confidence: top[0].Confidence, Top: top}
}

// drain answers every item left in the channel with ErrClosed.
func (w *Worker) drain() {
	n := 0
	for {
		item, ok := w.ch.tryDequeue()
		if !ok {
			break
		}
		item.reply.Put(Result{RequestID: item.ID, Err: ErrClosed})
		resultsTotal.WithLabelValues(Kind(ErrClosed)).Inc()
		n++
	}
	if n > 0 {
		w.log.Warn().Int("items", n).Msg("drained pending items on shutdown")
	}
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// State returns the worker's lifecycle state.
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// ID returns the worker index.
func (w *Worker) ID() int { return w.id }
