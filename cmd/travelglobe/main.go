package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelglobe/internal/api"
	"travelglobe/pkg/config"
	"travelglobe/pkg/db"
	"travelglobe/pkg/db/maintenance"
	"travelglobe/pkg/logging"
	"travelglobe/pkg/metrics"
	"travelglobe/pkg/probe"
	"travelglobe/pkg/store"
	"travelglobe/pkg/version"
)

const defaultConfigPath = "configs/travelglobe.yaml"

var (
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	seedPath   = flag.String("seed", "", "Import a timeline YAML fixture into the database before serving")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath, *seedPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, seed string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("TravelGlobe Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if seed != "" {
		if err := maintenance.ForceImport(ctx, st, seed); err != nil {
			return fmt.Errorf("failed to import seed: %w", err)
		}
	} else if err := maintenance.Run(ctx, st, appCfg.DB.Seed); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	results := probe.Run(ctx, []probe.Probe{
		probe.Database(dbConn),
		probe.SeedFile(appCfg.DB.Seed),
		probe.ListenAddr(appCfg.Server.Address),
	})
	if err := probe.Analyze(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	return runServer(ctx, appCfg, st)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func runServer(ctx context.Context, cfg *config.Config, st store.Store) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := shutdownTrigger(quit)

	streamH := api.NewStreamHandler(st, api.StreamOptions{
		Speed:         cfg.Playback.Speed,
		Clock:         cfg.Playback.Clock,
		FrameInterval: cfg.Playback.FrameInterval.Std(),
		DefaultYear:   cfg.Playback.DefaultYear,
	})
	defer streamH.Close()

	srv := api.NewServer(cfg.Server.Address,
		api.NewTimelineHandler(st, cfg.Playback.DefaultYear),
		api.NewPathHandler(cfg.Playback.Segments),
		streamH,
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(metrics.Middleware(srv.Handler))
	return runServerLifecycle(ctx, srv, quit)
}

// shutdownTrigger returns a func that requests shutdown without blocking
// when a request is already pending.
func shutdownTrigger(quit chan<- os.Signal) func() {
	return func() {
		select {
		case quit <- syscall.SIGTERM:
		default:
		}
	}
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
