package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/OptionsTradingUni/aipredixt/internal/cache"
	"github.com/OptionsTradingUni/aipredixt/internal/config"
	"github.com/OptionsTradingUni/aipredixt/internal/httpapi"
	"github.com/OptionsTradingUni/aipredixt/internal/metrics"
	"github.com/OptionsTradingUni/aipredixt/internal/persistence/postgres"
	"github.com/OptionsTradingUni/aipredixt/internal/pipeline"
	"github.com/OptionsTradingUni/aipredixt/internal/sources"
)

const (
	appName = "aipredixt"
	version = "v1.0.0"
)

var (
	flagConfig   string
	flagSnapshot string
	flagSport    string
	flagDate     string
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Probability synthesis and market generation for sports fixtures",
		Version: version,
		Long: `aipredixt ingests bookmaker odds and weighted contextual signals,
normalizes them into coherent probabilities, and generates a full market
catalogue with edge, confidence, and stake sizing per line.`,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&flagSnapshot, "snapshot", "config/snapshot.json", "Path to the odds snapshot file")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Analyze every fixture clearing the edge threshold",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), pipeline.ModeAnalyzeAll)
		},
	}
	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "Return the single best-value fixture from the top shortlist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), pipeline.ModeBestPick)
		},
	}
	for _, cmd := range []*cobra.Command{scanCmd, pickCmd} {
		cmd.Flags().StringVar(&flagSport, "sport", "soccer", "Sport to scan")
		cmd.Flags().StringVar(&flagDate, "date", "", "Kickoff date filter (YYYY-MM-DD)")
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP surface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(scanCmd, pickCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

// buildOrchestrator wires the snapshot source, guard, cache backend, and
// optional archive into one orchestrator.
func buildOrchestrator(ctx context.Context, cfg config.Config, registry *metrics.Registry) (*pipeline.Orchestrator, func(), error) {
	snapshot, err := sources.LoadSnapshot(flagSnapshot)
	if err != nil {
		return nil, nil, err
	}

	guardCfg := sources.GuardConfig{
		Name:                cfg.OddsSource.Name,
		RPS:                 cfg.OddsSource.RPS,
		Burst:               cfg.OddsSource.Burst,
		MaxRequests:         cfg.OddsSource.BreakerMaxRequests,
		Interval:            time.Duration(cfg.OddsSource.BreakerIntervalSecs) * time.Second,
		Timeout:             time.Duration(cfg.OddsSource.BreakerTimeoutSecs) * time.Second,
		ConsecutiveFailures: cfg.OddsSource.BreakerFailures,
	}

	var store cache.Store
	cleanup := func() {}
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		store = cache.NewRedisStore(client, "", 2*cfg.CacheTTL())
		cleanup = func() { client.Close() }
	default:
		store = cache.NewMemoryStore(cfg.Cache.MaxEntries)
	}

	var archive pipeline.Archiver
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Connect(ctx, cfg.Postgres.DSN, cfg.PostgresTimeout())
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("prediction archive: %w", err)
		}
		archive = postgres.NewPredictionsRepo(db, cfg.PostgresTimeout())
		prev := cleanup
		cleanup = func() { db.Close(); prev() }
	}

	orch := pipeline.New(pipeline.Deps{
		Odds:    sources.NewGuardedOddsSource(snapshot, guardCfg, nil),
		Signals: snapshot,
		Stats:   snapshot,
		Leagues: sources.NewLeagueDirectory(),
		Store:   store,
		Archive: archive,
		Metrics: registry,
	}, cfg.Pipeline, cfg.CacheTTL())
	return orch, cleanup, nil
}

func runPipeline(ctx context.Context, mode pipeline.Mode) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orch, cleanup, err := buildOrchestrator(ctx, cfg, metrics.NewRegistry())
	if err != nil {
		return err
	}
	defer cleanup()

	result, cached, err := orch.RunCached(ctx, flagSport, flagDate, mode)
	if err != nil {
		return err
	}
	if cached {
		log.Info().Str("sport", flagSport).Msg("served from result cache")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	orch, cleanup, err := buildOrchestrator(ctx, cfg, registry)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := httpapi.NewServer(cfg.HTTP, orch, registry)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
