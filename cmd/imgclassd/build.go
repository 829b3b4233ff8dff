package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"imgclassd/internal/classifier"
	"imgclassd/internal/common/fsutil"
	"imgclassd/internal/config"
	"imgclassd/internal/registry"
	"imgclassd/pkg/types"
)

func absPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	e, err := fsutil.ExpandHome(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(e)
}

// buildClassifier loads labels, discovers models and starts the worker pool.
func buildClassifier(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*classifier.Classifier, error) {
	labelsPath, err := absPath(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}
	labels, err := registry.LoadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	modelPath, err := absPath(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	metadataPath, err := absPath(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}
	layout, err := classifier.ParseLayout(cfg.InputLayout)
	if err != nil {
		return nil, err
	}

	var models []types.Model
	if cfg.ModelsDir != "" {
		found, err := registry.LoadDir(cfg.ModelsDir)
		if err != nil {
			logger.Warn().Err(err).Str("models_dir", cfg.ModelsDir).Msg("model scan failed")
		}
		models = found
	}

	logger.Info().
		Str("variant", cfg.Variant).
		Str("model", modelPath).
		Int("labels", len(labels)).
		Int("workers", cfg.Workers).
		Msg("loading model")
	return classifier.New(ctx, classifier.Config{
		Variant: cfg.Variant,
		Layout:  layout,
		Labels:  labels,
		Engine: classifier.EngineSpec{
			ModelPath:    modelPath,
			MetadataPath: metadataPath,
			LibraryPath:  cfg.ONNXLibraryPath,
		},
		Loader:        engineLoader,
		Workers:       cfg.Workers,
		MaxQueueDepth: cfg.MaxQueueDepth,
		Admission:     classifier.AdmissionPolicy(strings.ToLower(cfg.Admission)),
		MaxWait:       cfg.MaxWait(),
		ReplyTimeout:  cfg.ReplyTimeout(),
		MaxPixels:     cfg.MaxImagePixels,
		Logger:        &logger,
		Models:        models,
	})
}
