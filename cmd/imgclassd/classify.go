package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"imgclassd/internal/classifier"
	"imgclassd/internal/config"
	"imgclassd/internal/logging"
	"imgclassd/pkg/types"
)

type fileResult struct {
	File       string             `json:"file"`
	Label      string             `json:"label,omitempty"`
	Confidence float32            `json:"confidence,omitempty"`
	Top        []types.Prediction `json:"top,omitempty"`
	Error      string             `json:"error,omitempty"`
	Kind       string             `json:"kind,omitempty"`
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var flags config.Config
	var asJSON bool
	var top int
	cmd := &cobra.Command{
		Use:   "classify FILE...",
		Short: "Classify image files through the worker pool and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results, err := classifyFiles(ctx, cfg, args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return printResults(cmd.OutOrStdout(), results, top)
		},
	}
	bindClassifierFlags(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().IntVar(&top, "top", 1, "predictions to print per file")
	return cmd
}

// classifyFiles submits every file concurrently; results keep argument order.
func classifyFiles(ctx context.Context, cfg config.Config, files []string, logOut io.Writer) ([]fileResult, error) {
	// Per-request logs go to stderr only; the server's log file is left alone.
	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Console: logOut})
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	c, err := buildClassifier(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer c.Close(context.Background())

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			results[i] = fileResult{File: name}
			payload, err := os.ReadFile(name)
			if err != nil {
				results[i].Error = err.Error()
				results[i].Kind = "input_error"
				return nil
			}
			res, err := c.Classify(gctx, payload)
			if err != nil {
				results[i].Error = err.Error()
				results[i].Kind = classifier.Kind(err)
				return nil
			}
			results[i].Label = res.Label
			results[i].Confidence = res.Confidence
			results[i].Top = res.Top
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printResults(out io.Writer, results []fileResult, top int) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\terror (%s)\t%s\n", r.File, r.Kind, r.Error)
			continue
		}
		n := top
		if n < 1 {
			n = 1
		}
		if n > len(r.Top) {
			n = len(r.Top)
		}
		for i := 0; i < n; i++ {
			name := r.File
			if i > 0 {
				name = ""
			}
			fmt.Fprintf(tw, "%s\t%s\t%.4f\n", name, r.Top[i].Label, r.Top[i].Confidence)
		}
	}
	return tw.Flush()
}
