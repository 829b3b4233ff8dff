package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces environment overrides, e.g. IMGCLASSD_WORKERS.
const EnvPrefix = "IMGCLASSD_"

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds a partial Config from IMGCLASSD_* variables, suitable for Merge.
func FromEnv() Config {
	var c Config
	c.Addr = envStr("ADDR", "")
	c.Variant = envStr("VARIANT", "")
	c.ModelPath = envStr("MODEL_PATH", "")
	c.MetadataPath = envStr("METADATA_PATH", "")
	c.LabelsPath = envStr("LABELS_PATH", "")
	c.ModelsDir = envStr("MODELS_DIR", "")
	c.InputLayout = envStr("INPUT_LAYOUT", "")
	c.Workers = envInt("WORKERS", 0)
	c.MaxQueueDepth = envInt("MAX_QUEUE_DEPTH", 0)
	c.Admission = envStr("ADMISSION", "")
	c.MaxWaitMS = envInt("MAX_WAIT_MS", 0)
	c.ReplyTimeoutSeconds = envInt("REPLY_TIMEOUT_SECONDS", 0)
	c.LogFile = envStr("LOG_FILE", "")
	c.LogLevel = envStr("LOG_LEVEL", "")
	c.LogFormat = envStr("LOG_FORMAT", "")
	c.MaxBodyMB = envInt("MAX_BODY_MB", 0)
	c.MaxImagePixels = envInt("MAX_IMAGE_PIXELS", 0)
	c.CORSOrigins = SplitCSV(envStr("CORS_ORIGINS", ""))
	c.ONNXLibraryPath = envStr("ONNX_LIBRARY_PATH", "")
	return c
}

// SplitCSV splits a comma-separated list, trimming spaces and dropping
// empty entries.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, def string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		var n int
		_, err := fmt.Sscanf(v, "%d", &n)
		if err == nil {
			return n
		}
	}
	return def
}
