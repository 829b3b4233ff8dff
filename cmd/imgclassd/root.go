package main

import (
	"github.com/spf13/cobra"

	"imgclassd/internal/classifier"
	"imgclassd/internal/config"
)

// engineLoader overrides the engine used by serve and classify (tests).
var engineLoader classifier.EngineLoader

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	serveCmd := newServeCmd(opts)
	cmd := &cobra.Command{
		Use:          "imgclassd",
		Short:        "Queued image classification server",
		Long:         "Queued image classification server. Without a subcommand it runs serve with default flags.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			serveCmd.SetContext(cmd.Context())
			return serveCmd.RunE(serveCmd, args)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading IMGCLASSD_* variables")

	cmd.AddCommand(serveCmd, newClassifyCmd(opts), newVariantsCmd())
	return cmd
}

// resolveConfig layers defaults, the config file, the environment and flags,
// in increasing precedence.
func resolveConfig(opts *rootOptions, flags config.Config) (config.Config, error) {
	if opts.envFile != "" {
		if err := config.LoadDotEnv(opts.envFile); err != nil {
			return config.Config{}, err
		}
	}
	cfg := config.Default()
	if opts.configPath != "" {
		fileCfg, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	cfg = cfg.Merge(config.FromEnv()).Merge(flags).ResolvePaths()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// bindClassifierFlags registers the flags shared by serve and classify.
func bindClassifierFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	f.StringVar(&c.Variant, "variant", "", "model variant: resnet50 or xception")
	f.StringVar(&c.ModelPath, "model", "", "path to the .onnx model (default <models-dir>/<variant>.onnx)")
	f.StringVar(&c.MetadataPath, "metadata", "", "model metadata JSON (default next to the model)")
	f.StringVar(&c.LabelsPath, "labels", "", "class labels file (default <models-dir>/"+config.LabelsFileName+")")
	f.StringVar(&c.ModelsDir, "models-dir", "", "directory scanned for *.onnx models")
	f.StringVar(&c.InputLayout, "input-layout", "", "input tensor layout: nhwc or nchw")
	f.IntVar(&c.Workers, "workers", 0, "number of engine instances")
	f.IntVar(&c.MaxImagePixels, "max-image-pixels", 0, "reject images whose width*height exceeds this")
	f.StringVar(&c.ONNXLibraryPath, "onnx-lib", "", "path to the onnxruntime shared library")
	f.StringVar(&c.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&c.LogFormat, "log-format", "", "stderr log format: console or json")
}
