package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"imgclassd/internal/classifier"
	"imgclassd/internal/httpapi"
	"imgclassd/internal/logging"
	"imgclassd/internal/registry"
)

// createTempModelsDir creates a temporary directory holding empty .onnx files
// and a Keras-style label index, and returns the directory path.
func createTempModelsDir(t *testing.T, labels []string, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", n, err)
		}
	}
	index := map[string][2]string{}
	for i, l := range labels {
		index[strconv.Itoa(i)] = [2]string{"n0000000" + strconv.Itoa(i), l}
	}
	b, _ := json.Marshal(index)
	if err := os.WriteFile(filepath.Join(dir, "imagenet_class_index.json"), b, 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	return dir
}

// brightnessEngine ranks the first label highest for dark images and the last
// label for bright ones. It sleeps to make overlapping calls observable.
type brightnessEngine struct {
	delay time.Duration
	gate  chan struct{}
}

func (e *brightnessEngine) Predict(in []float32) ([]float32, error) {
	if e.gate != nil {
		<-e.gate
	}
	time.Sleep(e.delay)
	// resnet50 caffe: channel 0 is blue minus 103.939.
	bright := in[0] > 0
	if bright {
		return []float32{0.1, 0.2, 0.7}, nil
	}
	return []float32{0.7, 0.2, 0.1}, nil
}

func (e *brightnessEngine) Close() error { return nil }

type stack struct {
	srv     *httptest.Server
	c       *classifier.Classifier
	logPath string
}

// newStack wires registry, classifier, logging and HTTP the way serve does,
// with engines supplied by eng.
func newStack(t *testing.T, dir string, eng *brightnessEngine, mutate func(*classifier.Config)) *stack {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "logs", "inference.log")
	logger, closer, err := logging.New(logging.Options{Level: "info", File: logPath, Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("logging: %v", err)
	}
	t.Cleanup(func() { _ = closer.Close() })

	labels, err := registry.LoadLabels(filepath.Join(dir, "imagenet_class_index.json"))
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	models, err := registry.LoadDir(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	cfg := classifier.Config{
		Variant:      "resnet50",
		Labels:       labels,
		Engine:       classifier.EngineSpec{ModelPath: filepath.Join(dir, "resnet50.onnx")},
		Loader:       func(classifier.EngineSpec) (classifier.Engine, error) { return eng, nil },
		ReplyTimeout: 5 * time.Second,
		Logger:       &logger,
		Models:       models,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := classifier.New(ctx, cfg)
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}

	httpapi.SetLogger(logger)
	httpapi.SetLogFile(logPath)
	srv := httptest.NewServer(httpapi.NewMux(c))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Close(ctx)
		httpapi.SetLogFile("")
	})
	return &stack{srv: srv, c: c, logPath: logPath}
}

func grayPNG(t *testing.T, v uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
