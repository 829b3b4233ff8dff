package types

// ClassifyResponse is returned by POST /api/classify.
type ClassifyResponse struct {
	// Identifier of the work item that served this request.
	// example: 3f9c1e0a-2b7d-4f5e-9a61-0c8e2d4b7a10
	RequestID string `json:"request_id" example:"3f9c1e0a-2b7d-4f5e-9a61-0c8e2d4b7a10"`
	// Variant that produced the prediction.
	// example: resnet50
	Variant string `json:"variant" example:"resnet50"`
	// Top-ranked class name.
	// example: tabby
	Label string `json:"label" example:"tabby"`
	// Probability of the top-ranked class in [0,1].
	// example: 0.87
	Confidence float32 `json:"confidence" example:"0.87"`
	// Up to five ranked predictions, best first.
	Top []Prediction `json:"top"`
	// Wall-clock time spent queued plus processing, in milliseconds.
	// example: 41
	DurationMS int64 `json:"duration_ms" example:"41"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: image could not be decoded
	Error string `json:"error" example:"image could not be decoded"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Error classification (input_error, engine_fault, timeout, too_busy, closed).
	// example: input_error
	Kind string `json:"kind,omitempty" example:"input_error"`
}

// WorkerStatus summarizes one inference worker for /status.
type WorkerStatus struct {
	// Worker index within the pool.
	// example: 0
	ID int `json:"id" example:"0"`
	// Lifecycle state (loading, idle, processing, stopped, error).
	// example: idle
	State string `json:"state" example:"idle"`
	// Requests answered with a prediction.
	// example: 120
	Processed uint64 `json:"processed" example:"120"`
	// Requests answered with an error result.
	// example: 2
	Failed uint64 `json:"failed" example:"2"`
	// Last time this worker finished a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix,omitempty" example:"1700000000"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall service state (loading, ready, closed, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Variant loaded by every worker.
	// example: resnet50
	Variant string `json:"variant" example:"resnet50"`
	// Per-worker details.
	Workers []WorkerStatus `json:"workers"`
	// Work items waiting in the request channel.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Capacity of the request channel.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Admission policy applied when the request channel is full (reject or block).
	// example: block
	Admission string `json:"admission" example:"block"`
	// Total requests answered with a prediction.
	// example: 120
	ProcessedTotal uint64 `json:"processed_total" example:"120"`
	// Total requests answered with an error result.
	// example: 2
	FailedTotal uint64 `json:"failed_total" example:"2"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
