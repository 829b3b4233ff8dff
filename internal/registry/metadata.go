package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"imgclassd/internal/common/fsutil"
)

// Metadata describes the tensors of an exported model.
type Metadata struct {
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
	// Softmax requests a softmax over raw outputs when the graph emits logits.
	Softmax bool `json:"softmax"`
	// Layout is "nhwc" (Keras default) or "nchw".
	Layout string `json:"layout"`
}

// InputElements returns the number of scalars in one input tensor.
func (m Metadata) InputElements() int64 { return elements(m.InputShape) }

// OutputElements returns the number of scalars in one output tensor.
func (m Metadata) OutputElements() int64 { return elements(m.OutputShape) }

func elements(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// LoadMetadata reads a model metadata JSON file and applies defaults.
func LoadMetadata(path string) (Metadata, error) {
	var md Metadata
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return md, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return md, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(b, &md); err != nil {
		return md, fmt.Errorf("parse metadata: %w", err)
	}
	if md.InputName == "" {
		md.InputName = "input"
	}
	if md.OutputName == "" {
		md.OutputName = "output"
	}
	md.Layout = strings.ToLower(md.Layout)
	if md.Layout == "" {
		md.Layout = "nhwc"
	}
	if md.Layout != "nhwc" && md.Layout != "nchw" {
		return md, fmt.Errorf("unsupported layout %q", md.Layout)
	}
	for _, d := range append(append([]int64(nil), md.InputShape...), md.OutputShape...) {
		if d <= 0 {
			return md, fmt.Errorf("tensor shapes must be fully specified: input=%v output=%v", md.InputShape, md.OutputShape)
		}
	}
	if md.InputElements() == 0 || md.OutputElements() == 0 {
		return md, fmt.Errorf("input_shape and output_shape are required")
	}
	return md, nil
}
