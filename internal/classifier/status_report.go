package classifier

import (
	"time"

	"imgclassd/pkg/types"
)

// Status builds a detailed status response for /status.
func (c *Classifier) Status() types.StatusResponse {
	resp := types.StatusResponse{
		State:          string(c.State()),
		Variant:        c.variant.Name,
		QueueLen:       c.ch.Len(),
		MaxQueueDepth:  c.ch.Cap(),
		Admission:      string(c.ch.Policy()),
		UptimeSeconds:  int64(time.Since(c.started).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	resp.Workers = make([]types.WorkerStatus, 0, len(c.workers))
	for _, w := range c.workers {
		ws := types.WorkerStatus{
			ID:        w.ID(),
			State:     string(w.State()),
			Processed: w.processed.Load(),
			Failed:    w.failed.Load(),
			LastUsed:  w.lastUsed.Load(),
		}
		resp.ProcessedTotal += ws.Processed
		resp.FailedTotal += ws.Failed
		resp.Workers = append(resp.Workers, ws)
	}
	return resp
}
