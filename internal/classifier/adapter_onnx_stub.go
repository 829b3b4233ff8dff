//go:build !onnx

package classifier

// NewONNXEngine reports that this binary was built without onnxruntime
// support. Rebuild with -tags=onnx.
func NewONNXEngine(spec EngineSpec) (Engine, error) {
	return nil, ErrDependencyUnavailable("onnxruntime support not built in (rebuild with -tags=onnx)")
}
