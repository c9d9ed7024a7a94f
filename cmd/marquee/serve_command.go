package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/scheduler"
	"marquee/internal/server"
)

const reviewPruneJob = "review_prune"

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and scheduled catalog refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx, bind)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides paths.api_bind)")
	return cmd
}

func runServe(cmd *cobra.Command, ctx *commandContext, bindOverride string) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire server lock: %w", err)
	}
	if !locked {
		return errors.New("another marquee server is already running")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	app, err := ctx.ensureApp(cmd)
	if err != nil {
		return err
	}
	logger := app.logger

	catalog, err := app.catalogs.Catalog(signalCtx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	metrics.RecordCatalogRefresh(catalog.Len(), nil)
	metrics.SetCacheEntries(app.cache.Count())

	sched := scheduler.New(logger, 0)
	if schedule := strings.TrimSpace(cfg.Dataset.RefreshSchedule); schedule != "" {
		if err := sched.AddJob(scheduler.CatalogRefreshJob, schedule, scheduler.RefreshCatalog(app.catalogs)); err != nil {
			return fmt.Errorf("schedule catalog refresh: %w", err)
		}
	}
	if cfg.Reviews.Enabled && cfg.Reviews.CacheTTLHours > 0 {
		maxAge := time.Duration(cfg.Reviews.CacheTTLHours) * time.Hour
		err := sched.AddJob(reviewPruneJob, "@daily", func(jobCtx context.Context) error {
			removed, err := app.store.PruneReviews(jobCtx, maxAge)
			if err != nil {
				return err
			}
			logger.Info("pruned stored reviews", logging.Int64("removed", removed))
			return nil
		})
		if err != nil {
			return fmt.Errorf("schedule review pruning: %w", err)
		}
	}
	sched.Start()
	defer func() {
		<-sched.Stop().Done()
	}()

	bind := cfg.Paths.APIBind
	if strings.TrimSpace(bindOverride) != "" {
		bind = bindOverride
	}
	srv, err := server.New(server.Options{
		Bind:              bind,
		Token:             cfg.Paths.APIToken,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   time.Duration(cfg.Server.RateLimitWindowSeconds) * time.Second,
		Languages:         cfg.Dataset.Languages,
		Analyzer:          app.service,
		Recommender:       app.selector,
		Catalogs:          app.catalogs,
		Cache:             app.cache,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	if err := srv.Start(signalCtx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Marquee listening on http://%s (%d movies)\n", srv.Addr(), catalog.Len())
	for _, job := range sched.Jobs() {
		logger.Info("scheduled job",
			logging.String("job", job.Name),
			logging.String("schedule", job.Schedule),
			logging.String("next_run", job.NextRun.Format(time.RFC3339)),
		)
	}

	<-signalCtx.Done()
	logger.Info("marquee server shutting down")
	srv.Stop()
	return nil
}
