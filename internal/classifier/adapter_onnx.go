//go:build onnx

package classifier

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"imgclassd/internal/registry"
)

// The onnxruntime environment is process-global; engines share it and the
// last Close tears it down.
var (
	ortMu   sync.Mutex
	ortRefs int
)

func acquireEnvironment(libPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if ortRefs == 0 {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return ErrDependencyUnavailable(fmt.Sprintf("initialize onnxruntime: %v", err))
		}
	}
	ortRefs++
	return nil
}

func releaseEnvironment() {
	ortMu.Lock()
	defer ortMu.Unlock()
	if ortRefs == 0 {
		return
	}
	ortRefs--
	if ortRefs == 0 {
		_ = ort.DestroyEnvironment()
	}
}

type onnxEngine struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	meta    registry.Metadata
}

// metadataPathFor returns the sidecar metadata path next to the model file.
func metadataPathFor(spec EngineSpec) string {
	if spec.MetadataPath != "" {
		return spec.MetadataPath
	}
	return strings.TrimSuffix(spec.ModelPath, filepath.Ext(spec.ModelPath)) + ".json"
}

// NewONNXEngine loads spec.ModelPath into an onnxruntime session with
// preallocated input and output tensors.
func NewONNXEngine(spec EngineSpec) (Engine, error) {
	if spec.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	meta, err := registry.LoadMetadata(metadataPathFor(spec))
	if err != nil {
		return nil, err
	}
	if spec.Layout != "" && Layout(meta.Layout) != spec.Layout {
		return nil, fmt.Errorf("model layout %s does not match configured layout %s", meta.Layout, spec.Layout)
	}
	want := int64(3 * spec.Variant.Size * spec.Variant.Size)
	if meta.InputElements() != want {
		return nil, fmt.Errorf("model input %v holds %d values, variant %s needs %d", meta.InputShape, meta.InputElements(), spec.Variant.Name, want)
	}
	if err := acquireEnvironment(spec.LibraryPath); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		input.Destroy()
		releaseEnvironment()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(spec.ModelPath,
		[]string{meta.InputName}, []string{meta.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		releaseEnvironment()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &onnxEngine{session: session, input: input, output: output, meta: meta}, nil
}

func (e *onnxEngine) Predict(in []float32) ([]float32, error) {
	dst := e.input.GetData()
	if len(in) != len(dst) {
		return nil, fmt.Errorf("input has %d values, session expects %d", len(in), len(dst))
	}
	copy(dst, in)
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	raw := e.output.GetData()
	out := make([]float32, len(raw))
	copy(out, raw)
	if e.meta.Softmax {
		out = softmax(out)
	}
	return out, nil
}

func (e *onnxEngine) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	if e.input != nil {
		e.input.Destroy()
		e.input = nil
	}
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
	releaseEnvironment()
	return err
}
