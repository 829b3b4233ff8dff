package classifier

import (
	"context"
	"sync/atomic"
)

// Reply is a single-use, single-slot hand-off from a worker to the caller that
// enqueued the work item. The worker writes once; the caller reads any number
// of times.
type Reply struct {
	written atomic.Bool
	done    chan struct{}
	res     Result
}

func newReply() *Reply { return &Reply{done: make(chan struct{})} }

// Put stores the result and wakes the waiting caller. A second Put is a
// programmer error and panics.
func (r *Reply) Put(res Result) {
	if !r.written.CompareAndSwap(false, true) {
		panic("classifier: reply written twice")
	}
	r.res = res
	close(r.done)
}

// Get blocks until Put has been called and returns the stored result.
func (r *Reply) Get() Result {
	<-r.done
	return r.res
}

// Wait is Get with a deadline: if ctx is done before the result arrives it
// returns a Result carrying a timeout error. The reply itself is unaffected and
// will still receive its single Put.
func (r *Reply) Wait(ctx context.Context) Result {
	select {
	case <-r.done:
		return r.res
	default:
	}
	select {
	case <-r.done:
		return r.res
	case <-ctx.Done():
		return Result{Err: timeoutError{cause: ctx.Err()}}
	}
}

// Done is closed once the result is available.
func (r *Reply) Done() <-chan struct{} { return r.done }
