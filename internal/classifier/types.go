package classifier

import (
	"time"

	"github.com/google/uuid"

	"imgclassd/pkg/types"
)

// State represents lifecycle state of a worker or of the classifier.
type State string

const (
	StateLoading    State = "loading"
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateReady      State = "ready"
	StateStopped    State = "stopped"
	StateClosed     State = "closed"
	StateError      State = "error"
)

// Result is the outcome of one work item. Exactly one of Err or Label is set.
type Result struct {
	RequestID  string
	Label      string
	Confidence float32
	// Top holds up to topK predictions, best first.
	Top []types.Prediction
	Err error
}

// WorkItem pairs an opaque image payload with the reply that will carry its
// result. It is never mutated after NewWorkItem returns.
type WorkItem struct {
	ID       string
	Payload  []byte
	Enqueued time.Time
	reply    *Reply
}

// NewWorkItem creates a work item with a fresh reply channel.
func NewWorkItem(payload []byte) *WorkItem {
	return &WorkItem{
		ID:       uuid.NewString(),
		Payload:  payload,
		Enqueued: time.Now(),
		reply:    newReply(),
	}
}

// Reply returns the channel the producer waits on.
func (w *WorkItem) Reply() *Reply { return w.reply }
