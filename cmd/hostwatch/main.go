// Command hostwatch runs the sampler/aggregator/retention/alert-evaluator
// core described in SPEC_FULL.md as a single supervised process.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hostwatch/internal/aggregator"
	"hostwatch/internal/alert"
	"hostwatch/internal/config"
	"hostwatch/internal/notify"
	"hostwatch/internal/probe"
	"hostwatch/internal/retention"
	"hostwatch/internal/sampler"
	"hostwatch/internal/store"
	"hostwatch/internal/supervisor"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var dbPathOverride string

	root := &cobra.Command{
		Use:   "hostwatch",
		Short: "Single-host monitoring agent: sampler, tiered store, alert evaluator",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sampler, aggregator, retention, and alert evaluator under supervision",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, dbPathOverride)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config file (defaults to the platform search path)")
	runCmd.Flags().StringVar(&dbPathOverride, "db", "", "override the database path from config")

	root.AddCommand(runCmd)
	return root
}

func run(configPath, dbPathOverride string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("hostwatch: load config: %w", err)
	}
	if dbPathOverride != "" {
		cfg.DBPath = dbPathOverride
	}

	st, err := store.Open(cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("hostwatch: open store: %w", err)
	}
	defer st.Close()

	cachedProbe := probe.NewCachedProbe(probe.NewGopsutilProbe())
	ret := retention.New(st)
	agg := aggregator.New(st, ret, log)
	smp := sampler.New(cachedProbe, st, agg, cfg.SampleInterval, log)

	repo := alert.NewRepository(st)
	notifier := notify.NewDispatcher()
	evaluator := alert.NewEvaluator(st, repo, notifier, log)

	sup := supervisor.New(log)
	sup.Add("host-refresh", func(ctx context.Context) error {
		return cachedProbe.RunRefreshLoop(ctx, cfg.SampleInterval)
	})
	sup.Add("sampler", smp.Run)
	sup.Add("alert-evaluator", evaluator.Run)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("hostwatch starting", "db_path", cfg.DBPath, "sample_interval", cfg.SampleInterval)
	err = sup.Run(ctx)
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
