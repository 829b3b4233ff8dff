package classifier

// Engine is a loaded prediction model. Implementations are not required to be
// safe for concurrent use: each Engine is owned by exactly one Worker, which
// never calls Predict concurrently with itself.
type Engine interface {
	// Predict runs a single-image forward pass over a normalized input tensor
	// and returns one score per label.
	Predict(input []float32) ([]float32, error)
	// Close releases resources associated with the engine.
	Close() error
}

// EngineSpec tells a loader what to load for one worker.
type EngineSpec struct {
	Variant      Variant
	Layout       Layout
	ModelPath    string
	MetadataPath string
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string
	// Index is the worker index the engine is loaded for.
	Index int
}

// EngineLoader loads one Engine. It is called from the worker goroutine that
// will own the engine.
type EngineLoader func(spec EngineSpec) (Engine, error)
