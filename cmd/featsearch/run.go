package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/featsearch"
	"github.com/hupe1980/featsearch/config"
	"github.com/hupe1980/featsearch/metrics/prometheus"
)

func newRunCmd(configPath *string) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search every target, resuming from the last checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "search only the current target")
	return cmd
}

func run(ctx context.Context, cfg *config.File, once bool) error {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	var opts []featsearch.Option
	if cfg.Metrics.Addr != "" {
		opts = append(opts, featsearch.WithMetricsCollector(prometheus.New()))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	s, err := open(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("close searcher", "error", err)
		}
	}()

	if once {
		res, err := s.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("run finished", "target", res.Target, "accepted", len(res.Accepted), "interrupted", res.Interrupted)
		return nil
	}

	results, err := s.RunAll(ctx)
	accepted := 0
	for _, res := range results {
		accepted += len(res.Accepted)
	}
	logger.Info("search finished", "runs", len(results), "accepted", accepted)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}
