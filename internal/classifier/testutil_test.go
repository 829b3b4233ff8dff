package classifier

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var testLabels = []string{"l0", "l1", "l2", "l3", "l4", "l5", "l6", "l7"}

// solidPNG encodes a small image whose blue channel selects a label index
// under resnet50 preprocessing (see labelIndex).
func solidPNG(t *testing.T, idx int) []byte {
	t.Helper()
	return colorPNG(t, color.RGBA{R: 0, G: 0, B: uint8(idx * 20), A: 255})
}

func colorPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// labelIndex recovers the index encoded by solidPNG from the first channel of
// a resnet50 (caffe, BGR) NHWC tensor.
func labelIndex(input []float32) int {
	b := float64(input[0]) + 103.939
	return int(math.Round(b/20)) % len(testLabels)
}

func oneHot(idx int) []float32 {
	out := make([]float32, len(testLabels))
	out[idx] = 1
	return out
}

// fakeEngine returns a one-hot score for the encoded index. It records any
// overlapping Predict calls, which must never happen.
type fakeEngine struct {
	delay      time.Duration
	failIdx    int
	panicIdx   int
	busy       atomic.Bool
	overlaps   atomic.Int32
	calls      atomic.Int32
	closed     atomic.Bool
	gate       chan struct{}
	entered    chan struct{}
	enterOnce  sync.Once
	wrongShape bool
}

func newFakeEngine() *fakeEngine { return &fakeEngine{failIdx: -1, panicIdx: -1} }

func (f *fakeEngine) Predict(input []float32) ([]float32, error) {
	if !f.busy.CompareAndSwap(false, true) {
		f.overlaps.Add(1)
	}
	defer f.busy.Store(false)
	f.calls.Add(1)
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	idx := labelIndex(input)
	switch {
	case idx == f.panicIdx:
		panic("engine exploded")
	case idx == f.failIdx:
		return nil, errors.New("engine failed")
	case f.wrongShape:
		return []float32{1}, nil
	}
	return oneHot(idx), nil
}

func (f *fakeEngine) Close() error {
	f.closed.Store(true)
	return nil
}

// engineSet hands out one fake engine per worker and remembers them.
type engineSet struct {
	mu      sync.Mutex
	engines []*fakeEngine
	mk      func(idx int) *fakeEngine
	failAt  int
}

func newEngineSet(mk func(idx int) *fakeEngine) *engineSet {
	if mk == nil {
		mk = func(int) *fakeEngine { return newFakeEngine() }
	}
	return &engineSet{mk: mk, failAt: -1}
}

func (s *engineSet) load(spec EngineSpec) (Engine, error) {
	if spec.Index == s.failAt {
		return nil, errors.New("model file missing")
	}
	e := s.mk(spec.Index)
	s.mu.Lock()
	s.engines = append(s.engines, e)
	s.mu.Unlock()
	return e, nil
}

func (s *engineSet) all() []*fakeEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeEngine(nil), s.engines...)
}

func testConfig(set *engineSet) Config {
	return Config{
		Variant:      "resnet50",
		Labels:       testLabels,
		Loader:       set.load,
		Workers:      1,
		ReplyTimeout: 5 * time.Second,
	}
}

func newTestClassifier(t *testing.T, cfg Config) *Classifier {
	t.Helper()
	c, err := New(testCtx(t), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
