package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Default() via Merge.
type Config struct {
	Addr                string   `json:"addr" yaml:"addr" toml:"addr"`
	Variant             string   `json:"variant" yaml:"variant" toml:"variant"`
	ModelPath           string   `json:"model_path" yaml:"model_path" toml:"model_path"`
	MetadataPath        string   `json:"metadata_path" yaml:"metadata_path" toml:"metadata_path"`
	LabelsPath          string   `json:"labels_path" yaml:"labels_path" toml:"labels_path"`
	ModelsDir           string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	InputLayout         string   `json:"input_layout" yaml:"input_layout" toml:"input_layout"`
	Workers             int      `json:"workers" yaml:"workers" toml:"workers"`
	MaxQueueDepth       int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	Admission           string   `json:"admission" yaml:"admission" toml:"admission"`
	MaxWaitMS           int      `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`
	ReplyTimeoutSeconds int      `json:"reply_timeout_seconds" yaml:"reply_timeout_seconds" toml:"reply_timeout_seconds"`
	LogFile             string   `json:"log_file" yaml:"log_file" toml:"log_file"`
	LogLevel            string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat           string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyMB           int      `json:"max_body_mb" yaml:"max_body_mb" toml:"max_body_mb"`
	MaxImagePixels      int      `json:"max_image_pixels" yaml:"max_image_pixels" toml:"max_image_pixels"`
	CORSOrigins         []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	ONNXLibraryPath     string   `json:"onnx_library_path" yaml:"onnx_library_path" toml:"onnx_library_path"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
