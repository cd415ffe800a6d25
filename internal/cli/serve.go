package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/cep"
	"github.com/evcraddock/visit-planner/internal/config"
	"github.com/evcraddock/visit-planner/internal/db"
	"github.com/evcraddock/visit-planner/internal/logging"
	"github.com/evcraddock/visit-planner/internal/metrics"
	"github.com/evcraddock/visit-planner/internal/planner"
	"github.com/evcraddock/visit-planner/internal/visit"
	"github.com/evcraddock/visit-planner/internal/web"
)

type serveOptions struct {
	configPath string
	port       int
	dbPath     string
	dev        bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server that owns the visit list.

Settings come from the --config file (YAML or JSON), then VP_ environment
variables (e.g. VP_SERVER__PORT=9090), then the flags below.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .yml or .json)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "port to listen on (default 8080)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: ~/.visit-planner/visits.db)")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "human-readable debug logging")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.dev {
		cfg.Server.DevMode = true
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Server.DevMode, os.Stdout)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing database")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.NewPromRecorder(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := planner.NewService(ctx, visit.NewRepository(database), planner.Options{
		Rules:       cfg.Schedule.Rules(),
		SeedOnEmpty: cfg.Seed.Enabled(),
		Logger:      logging.Component(log, "planner"),
		Metrics:     rec,
		Lookup:      cep.NewClient(cfg.CEP.BaseURL, cfg.CEP.Timeout()),
	})
	if err != nil {
		return err
	}

	srv := web.NewServer(svc, web.Options{
		Logger:   logging.Component(log, "http"),
		Gatherer: reg,
	})
	log.Info().
		Str("db", cfg.Database.Path).
		Int("max_minutes_per_day", cfg.Schedule.MaxMinutesPerDay).
		Msg("visit planner ready")
	return srv.ListenAndServe(ctx, cfg.Server.Port)
}

