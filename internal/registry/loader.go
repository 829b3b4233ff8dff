package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"imgclassd/internal/common/fsutil"
	"imgclassd/pkg/types"
)

// Scanner discovers model files in a directory.
type Scanner interface {
	Scan(dir string) ([]types.Model, error)
}

// ONNXScanner lists *.onnx files. ID is the filename without extension;
// Path is the absolute file path.
type ONNXScanner struct{}

func NewONNXScanner() *ONNXScanner { return &ONNXScanner{} }

func (s *ONNXScanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".onnx") {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		models = append(models, types.Model{ID: id, Name: name, Path: filepath.Join(abs, name)})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// LoadDir scans a directory for *.onnx files.
func LoadDir(dir string) ([]types.Model, error) {
	return NewONNXScanner().Scan(dir)
}
