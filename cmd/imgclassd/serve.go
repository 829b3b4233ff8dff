package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"imgclassd/internal/config"
	"imgclassd/internal/httpapi"
	"imgclassd/internal/logging"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var flags config.Config
	var cors string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the classification workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.CORSOrigins = config.SplitCSV(cors)
			cfg, err := resolveConfig(opts, flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	bindClassifierFlags(cmd, &flags)
	f := cmd.Flags()
	f.StringVar(&flags.Addr, "addr", "", "HTTP listen address (default :5000)")
	f.IntVar(&flags.MaxQueueDepth, "max-queue-depth", 0, "pending requests admitted before backpressure")
	f.StringVar(&flags.Admission, "admission", "", "when the queue is full: reject (429 at once) or block (wait up to --max-wait-ms)")
	f.IntVar(&flags.MaxWaitMS, "max-wait-ms", 0, "admission wait under the block policy")
	f.IntVar(&flags.ReplyTimeoutSeconds, "reply-timeout", 0, "seconds a request waits for its prediction")
	f.StringVar(&flags.LogFile, "log-file", "", "request log served by /log (default logs/inference.log)")
	f.IntVar(&flags.MaxBodyMB, "max-body-mb", 0, "maximum upload size in MiB")
	f.StringVar(&cors, "cors-origins", "", "comma-separated list of allowed CORS origins")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	httpapi.SetLogger(logger)
	httpapi.SetLogFile(cfg.LogFile)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes())
	httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins,
		[]string{http.MethodGet, http.MethodPost, http.MethodOptions},
		[]string{"Content-Type", "X-Log-Level"})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// No degraded mode: a worker that cannot load its engine aborts startup.
	c, err := buildClassifier(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Str("variant", cfg.Variant).Msg("imgclassd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		// Let in-flight handlers collect their replies before the pool closes.
		serr := srv.Shutdown(shCtx)
		cancelBase()
		cerr := c.Close(shCtx)
		return errors.Join(serr, cerr)
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	return nil
}
