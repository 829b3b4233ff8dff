package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"imgclassd/pkg/types"
)

// Classifier is the producer-side handle: it owns the request channel and the
// worker pool. Classify may be called from any number of goroutines.
type Classifier struct {
	cfg     Config
	variant Variant
	ch      *RequestChannel
	workers []*Worker
	group   *errgroup.Group
	cancel  context.CancelFunc
	started time.Time

	mu        sync.RWMutex
	state     State
	closeOnce sync.Once
	closeErr  error
}

// New validates cfg, starts cfg.Workers workers and waits until every engine
// is loaded. Any load failure (or ctx ending first) stops the pool and is
// returned as a startup fault.
func New(ctx context.Context, cfg Config) (*Classifier, error) {
	cfg = cfg.withDefaults()
	v, err := LookupVariant(cfg.Variant)
	if err != nil {
		return nil, startupFaultError{err: err}
	}
	if len(cfg.Labels) == 0 {
		return nil, startupFaultError{err: errors.New("labels are required")}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Classifier{
		cfg:     cfg,
		variant: v,
		ch:      NewRequestChannel(cfg.MaxQueueDepth, cfg.Admission, cfg.MaxWait),
		group:   new(errgroup.Group),
		cancel:  cancel,
		started: time.Now(),
		state:   StateLoading,
	}
	started := make(chan error, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		w := newWorker(i, c.ch, v, cfg)
		c.workers = append(c.workers, w)
		c.group.Go(func() error { return w.Run(runCtx, started) })
	}

	for i := 0; i < cfg.Workers; i++ {
		select {
		case err := <-started:
			if err != nil {
				c.abort()
				return nil, err
			}
		case <-ctx.Done():
			c.abort()
			return nil, startupFaultError{err: fmt.Errorf("waiting for workers: %w", ctx.Err())}
		}
	}
	c.setState(StateReady)
	cfg.Logger.Info().
		Str("variant", v.Name).
		Int("workers", cfg.Workers).
		Int("max_queue_depth", c.ch.Cap()).
		Str("admission", string(c.ch.Policy())).
		Msg("classifier ready")
	return c, nil
}

func (c *Classifier) abort() {
	c.setState(StateError)
	c.ch.Close()
	c.cancel()
	_ = c.group.Wait()
}

// Classify submits payload and blocks until its result arrives, ctx ends, or
// the reply timeout elapses. The returned error equals Result.Err when the
// item reached a worker.
func (c *Classifier) Classify(ctx context.Context, payload []byte) (Result, error) {
	if !c.Ready() {
		return Result{Err: ErrClosed}, ErrClosed
	}
	item := NewWorkItem(payload)
	if err := c.ch.Enqueue(ctx, item); err != nil {
		switch {
		case IsTooBusy(err), IsClosed(err):
			admissionRejected.WithLabelValues(Kind(err)).Inc()
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			err = timeoutError{cause: err}
		}
		return Result{RequestID: item.ID, Err: err}, err
	}
	queueDepth.Set(float64(c.ch.Len()))

	wctx, cancel := context.WithTimeout(ctx, c.cfg.ReplyTimeout)
	defer cancel()
	res := item.Reply().Wait(wctx)
	res.RequestID = item.ID
	// The worker counts what it delivers; a timed-out wait never saw that result.
	if IsTimeout(res.Err) {
		resultsTotal.WithLabelValues(Kind(res.Err)).Inc()
	}
	return res, res.Err
}

// Ready reports whether the classifier accepts work.
func (c *Classifier) Ready() bool { return c.State() == StateReady }

// State returns the classifier lifecycle state.
func (c *Classifier) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Classifier) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Variant returns the configured variant.
func (c *Classifier) Variant() Variant { return c.variant }

// ListModels returns the known model files, marking the loaded one active.
func (c *Classifier) ListModels() []types.Model {
	active := c.cfg.Engine.ModelPath
	out := make([]types.Model, 0, len(c.cfg.Models)+1)
	found := false
	for _, m := range c.cfg.Models {
		m.Active = active != "" && m.Path == active
		if m.Active {
			found = true
			m.InputSize = c.variant.Size
		}
		out = append(out, m)
	}
	if !found && active != "" {
		out = append(out, types.Model{
			ID:        c.variant.Name,
			Name:      c.variant.Description,
			Path:      active,
			InputSize: c.variant.Size,
			Active:    true,
		})
	}
	return out
}

// Close stops admission and waits for workers to finish pending items. If ctx
// ends first, the workers answer whatever is still queued with ErrClosed.
func (c *Classifier) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		c.ch.Close()
		done := make(chan error, 1)
		go func() { done <- c.group.Wait() }()
		select {
		case c.closeErr = <-done:
		case <-ctx.Done():
			c.cancel()
			<-done
			c.closeErr = ctx.Err()
		}
		c.cancel()
		c.cfg.Logger.Info().Err(c.closeErr).Msg("classifier closed")
	})
	return c.closeErr
}
