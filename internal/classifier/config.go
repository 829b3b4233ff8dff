package classifier

import (
	"time"

	"github.com/rs/zerolog"

	"imgclassd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultReplyTimeout  = 60 * time.Second
	defaultWorkers       = 1
)

// Config encapsulates all tunables for Classifier construction.
type Config struct {
	// Variant selects the model configuration (resnet50, xception).
	Variant string
	Layout  Layout
	// Labels maps output index to class name.
	Labels []string
	Engine EngineSpec
	// Loader loads one engine per worker. Defaults to NewONNXEngine.
	Loader EngineLoader
	// Workers is the number of engine instances, each with its own worker.
	Workers       int
	MaxQueueDepth int
	Admission     AdmissionPolicy
	// MaxWait bounds how long Enqueue blocks under AdmitBlock.
	MaxWait time.Duration
	// ReplyTimeout bounds how long Classify waits for a reply.
	ReplyTimeout time.Duration
	Logger       *zerolog.Logger
	Publisher    EventPublisher
	// MaxPixels rejects uploads whose header declares more pixels.
	MaxPixels int
	// Models are reported by ListModels (e.g., discovered onnx files).
	Models []types.Model
}

func (cfg Config) withDefaults() Config {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.MaxQueueDepth <= 0 {
		cfg.MaxQueueDepth = defaultMaxQueueDepth
	}
	if cfg.Admission != AdmitReject {
		cfg.Admission = AdmitBlock
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = defaultReplyTimeout
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.Layout == "" {
		cfg.Layout = LayoutNHWC
	}
	if cfg.Loader == nil {
		cfg.Loader = NewONNXEngine
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	return cfg
}
