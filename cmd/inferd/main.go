package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferd/internal/config"
	"inferd/internal/engine"
	"inferd/internal/httpapi"
	"inferd/internal/registry"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inferd",
		Short:         "Concurrent inference scheduling daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildServeCmd())
	return root
}

func buildServeCmd() *cobra.Command {
	var (
		addr          string
		configPath    string
		logLevel      string
		inferWorkers  int
		cacheCapacity int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduling engine behind the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, configPath, logLevel, inferWorkers, cacheCapacity)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultEnv("INFERD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (.yaml/.json/.toml) declaring engine settings and models")
	cmd.Flags().StringVar(&logLevel, "log-level", defaultEnv("INFERD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	cmd.Flags().IntVar(&inferWorkers, "infer-workers", 0, "Concurrent inference bound (0 = number of CPUs)")
	cmd.Flags().IntVar(&cacheCapacity, "cache-capacity", 0, "Result cache capacity in entries (0 = default)")
	return cmd
}

func defaultEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runServe(addr, configPath, logLevel string, inferWorkers, cacheCapacity int) error {
	var cfg config.Config
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	// flag and env win over the config file
	if logLevel == "info" && cfg.LogLevel != "" {
		logLevel = cfg.LogLevel
	}
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	if cfg.Addr != "" {
		addr = cfg.Addr
	}
	if inferWorkers <= 0 {
		inferWorkers = cfg.Engine.InferWorkers
	}
	if cacheCapacity <= 0 {
		cacheCapacity = cfg.Engine.CacheCapacity
	}

	eng := engine.New(engine.EngineConfig{
		PrepareWorkers:    cfg.Engine.PrepareWorkers,
		InferWorkers:      inferWorkers,
		InterpretWorkers:  cfg.Engine.InterpretWorkers,
		PendingQueueSize:  cfg.Engine.PendingQueueSize,
		DispatchBatchSize: cfg.Engine.DispatchBatchSize,
		DispatchInterval:  time.Duration(cfg.Engine.DispatchIntervalMs) * time.Millisecond,
		CacheCapacity:     cacheCapacity,
		Logger:            &log,
	})

	entries, err := registry.Build(cfg.Models)
	if err != nil {
		return fmt.Errorf("build model registry: %w", err)
	}
	for _, ent := range entries {
		if err := eng.RegisterModel(ent.ID, ent.Runner, ent.Config); err != nil {
			log.Error().Err(err).Str("model", ent.ID).Msg("model registration failed")
		}
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	eng.Run(baseCtx)

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	mux := httpapi.NewMux(eng)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Info().Str("addr", addr).Int("models", len(entries)).Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	baseCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return eng.Close()
}
