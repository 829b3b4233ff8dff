package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// LabelsFileName is looked up in ModelsDir when LabelsPath is unset.
const LabelsFileName = "imagenet_class_index.json"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:                ":5000",
		Variant:             "resnet50",
		ModelsDir:           "~/models/imgclassd",
		InputLayout:         "nhwc",
		Workers:             1,
		MaxQueueDepth:       32,
		Admission:           "block",
		MaxWaitMS:           30000,
		ReplyTimeoutSeconds: 60,
		LogFile:             "logs/inference.log",
		LogLevel:            "info",
		LogFormat:           "console",
		MaxBodyMB:           16,
		MaxImagePixels:      178956970,
	}
}

// Merge returns c with every non-zero field of o applied on top.
func (c Config) Merge(o Config) Config {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	num := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	str(&c.Addr, o.Addr)
	str(&c.Variant, o.Variant)
	str(&c.ModelPath, o.ModelPath)
	str(&c.MetadataPath, o.MetadataPath)
	str(&c.LabelsPath, o.LabelsPath)
	str(&c.ModelsDir, o.ModelsDir)
	str(&c.InputLayout, o.InputLayout)
	num(&c.Workers, o.Workers)
	num(&c.MaxQueueDepth, o.MaxQueueDepth)
	str(&c.Admission, o.Admission)
	num(&c.MaxWaitMS, o.MaxWaitMS)
	num(&c.ReplyTimeoutSeconds, o.ReplyTimeoutSeconds)
	str(&c.LogFile, o.LogFile)
	str(&c.LogLevel, o.LogLevel)
	str(&c.LogFormat, o.LogFormat)
	num(&c.MaxBodyMB, o.MaxBodyMB)
	num(&c.MaxImagePixels, o.MaxImagePixels)
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = append([]string(nil), o.CORSOrigins...)
	}
	str(&c.ONNXLibraryPath, o.ONNXLibraryPath)
	return c
}

// ResolvePaths fills ModelPath and LabelsPath from ModelsDir when unset:
// <models_dir>/<variant>.onnx and <models_dir>/imagenet_class_index.json.
func (c Config) ResolvePaths() Config {
	if c.ModelsDir == "" {
		return c
	}
	if c.ModelPath == "" {
		c.ModelPath = filepath.Join(c.ModelsDir, strings.ToLower(c.Variant)+".onnx")
	}
	if c.LabelsPath == "" {
		c.LabelsPath = filepath.Join(c.ModelsDir, LabelsFileName)
	}
	return c
}

// Validate rejects values the service cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if strings.TrimSpace(c.Variant) == "" {
		return fmt.Errorf("variant is required")
	}
	if c.ModelPath == "" && c.ModelsDir == "" {
		return fmt.Errorf("model_path or models_dir is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MaxQueueDepth < 0 {
		return fmt.Errorf("max_queue_depth must be >= 0, got %d", c.MaxQueueDepth)
	}
	switch strings.ToLower(c.Admission) {
	case "", "reject", "block":
	default:
		return fmt.Errorf("admission must be reject or block, got %q", c.Admission)
	}
	switch strings.ToLower(c.InputLayout) {
	case "", "nhwc", "nchw":
	default:
		return fmt.Errorf("input_layout must be nhwc or nchw, got %q", c.InputLayout)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.MaxWaitMS < 0 || c.ReplyTimeoutSeconds < 0 || c.MaxBodyMB < 0 {
		return fmt.Errorf("max_wait_ms, reply_timeout_seconds and max_body_mb must be >= 0")
	}
	if c.MaxImagePixels < 0 {
		return fmt.Errorf("max_image_pixels must be >= 0, got %d", c.MaxImagePixels)
	}
	return nil
}

// MaxWait returns MaxWaitMS as a duration.
func (c Config) MaxWait() time.Duration { return time.Duration(c.MaxWaitMS) * time.Millisecond }

// ReplyTimeout returns ReplyTimeoutSeconds as a duration.
func (c Config) ReplyTimeout() time.Duration {
	return time.Duration(c.ReplyTimeoutSeconds) * time.Second
}

// MaxBodyBytes returns MaxBodyMB in bytes.
func (c Config) MaxBodyBytes() int64 { return int64(c.MaxBodyMB) << 20 }
