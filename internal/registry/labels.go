package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"imgclassd/internal/common/fsutil"
)

// LoadLabels reads the label vocabulary that maps model output index to class
// name. Supported formats:
//   - .json: Keras imagenet_class_index.json ({"0": ["n01440764", "tench"], ...})
//     or a plain JSON array of names.
//   - anything else: one label per line.
func LoadLabels(path string) ([]string, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	var labels []string
	if strings.EqualFold(filepath.Ext(p), ".json") {
		labels, err = parseJSONLabels(b)
	} else {
		labels, err = parseTextLabels(b)
	}
	if err != nil {
		return nil, fmt.Errorf("parse labels %s: %w", filepath.Base(p), err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", filepath.Base(p))
	}
	return labels, nil
}

func parseJSONLabels(b []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var names []string
		if err := json.Unmarshal(trimmed, &names); err != nil {
			return nil, err
		}
		return names, nil
	}
	var index map[string][]string
	if err := json.Unmarshal(trimmed, &index); err != nil {
		return nil, err
	}
	labels := make([]string, len(index))
	for k, v := range index {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("non-numeric class index %q", k)
		}
		if i < 0 || i >= len(index) {
			return nil, fmt.Errorf("class index %d out of range", i)
		}
		if len(v) == 0 {
			return nil, fmt.Errorf("class index %d has no name", i)
		}
		// [wnid, name]; a single element is taken as the name.
		labels[i] = v[len(v)-1]
	}
	for i, l := range labels {
		if l == "" {
			return nil, fmt.Errorf("class index %d missing", i)
		}
	}
	return labels, nil
}

func parseTextLabels(b []byte) ([]string, error) {
	var labels []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		labels = append(labels, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// Trailing blank lines do not shift indices, drop them.
	for len(labels) > 0 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}
	return labels, nil
}
