//go:build !onnx

package classifier

import "testing"

func TestNew_WithoutONNXRuntimeIsDependencyUnavailable(t *testing.T) {
	cfg := testConfig(newEngineSet(nil))
	cfg.Loader = nil
	cfg.Engine.ModelPath = "model.onnx"
	_, err := New(testCtx(t), cfg)
	if !IsStartupFault(err) || !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency-unavailable startup fault, got %v", err)
	}
}
