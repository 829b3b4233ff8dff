package classifier

import (
	"context"
	"sync"
	"time"
)

// AdmissionPolicy decides what Enqueue does when the request channel is full.
type AdmissionPolicy string

const (
	// AdmitReject fails immediately with a too-busy error.
	AdmitReject AdmissionPolicy = "reject"
	// AdmitBlock waits up to the configured max wait for a free slot.
	AdmitBlock AdmissionPolicy = "block"
)

// RequestChannel is the bounded FIFO shared by all producers and the workers.
// Items are delivered in admission order; none are reordered, duplicated or
// dropped once admitted.
type RequestChannel struct {
	items   chan *WorkItem
	done    chan struct{}
	policy  AdmissionPolicy
	maxWait time.Duration

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewRequestChannel returns a channel holding at most depth pending items.
func NewRequestChannel(depth int, policy AdmissionPolicy, maxWait time.Duration) *RequestChannel {
	if depth <= 0 {
		depth = defaultMaxQueueDepth
	}
	if policy != AdmitReject {
		policy = AdmitBlock
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	return &RequestChannel{
		items:   make(chan *WorkItem, depth),
		done:    make(chan struct{}),
		policy:  policy,
		maxWait: maxWait,
	}
}

// Enqueue admits item according to the admission policy.
func (q *RequestChannel) Enqueue(ctx context.Context, item *WorkItem) error {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.items <- item:
		return nil
	default:
	}
	if q.policy == AdmitReject {
		return tooBusyError{reason: "queue full"}
	}
	timer := time.NewTimer(q.maxWait)
	defer timer.Stop()
	select {
	case q.items <- item:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return tooBusyError{reason: "queue wait exceeded " + q.maxWait.String()}
	}
}

// Dequeue blocks until an item is available. It returns false once the channel
// is closed and drained, or when ctx is done.
func (q *RequestChannel) Dequeue(ctx context.Context) (*WorkItem, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case item, ok := <-q.items:
		return item, ok
	case <-ctx.Done():
		return nil, false
	}
}

// tryDequeue returns a pending item without blocking.
func (q *RequestChannel) tryDequeue() (*WorkItem, bool) {
	select {
	case item, ok := <-q.items:
		return item, ok
	default:
		return nil, false
	}
}

// Close stops admission. Items already admitted stay readable until drained.
// Producers blocked in Enqueue are released with ErrClosed.
func (q *RequestChannel) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		q.mu.Lock()
		q.closed = true
		close(q.items)
		q.mu.Unlock()
	})
}

// Len returns the number of pending items.
func (q *RequestChannel) Len() int { return len(q.items) }

// Cap returns the channel capacity.
func (q *RequestChannel) Cap() int { return cap(q.items) }

// Policy returns the admission policy.
func (q *RequestChannel) Policy() AdmissionPolicy { return q.policy }
