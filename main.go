package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/hayderhassan/InsightSphere/migrations"
	"github.com/hayderhassan/InsightSphere/pkg/config"
	"github.com/hayderhassan/InsightSphere/pkg/database"
	"github.com/hayderhassan/InsightSphere/pkg/handlers"
	"github.com/hayderhassan/InsightSphere/pkg/logging"
	"github.com/hayderhassan/InsightSphere/pkg/mcp"
	"github.com/hayderhassan/InsightSphere/pkg/middleware"
	"github.com/hayderhassan/InsightSphere/pkg/repositories"
	"github.com/hayderhassan/InsightSphere/pkg/retry"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

// pruneInterval is how often expired edit sessions are swept.
const pruneInterval = time.Minute

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.IsLocal() {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("listen_addr", cfg.ListenAddr()),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.Duration("edit_session_ttl", cfg.EditSessions.TTL()))

	db, err := database.Open(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
		MinConnections: cfg.Database.MaxIdleConns,
	}, retry.StartupConfig(
		cfg.Startup.ConnectRetries,
		time.Duration(cfg.Startup.ConnectDelayMillis)*time.Millisecond,
	), migrations.FS, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	datasetRepo := repositories.NewDatasetRepository(db)
	semanticConfigRepo := repositories.NewSemanticConfigRepository(db)

	datasetService := services.NewDatasetService(datasetRepo, logger)
	semanticService := services.NewSemanticService(datasetRepo, semanticConfigRepo, logger)
	editSessions := services.NewEditSessionStore(semanticService, cfg.EditSessions.TTL(), cfg.EditSessions.MaxSessions, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewDatasetsHandler(datasetService, logger).RegisterRoutes(mux)
	handlers.NewSemanticHandler(semanticService, logger).RegisterRoutes(mux)
	handlers.NewEditSessionsHandler(editSessions, logger).RegisterRoutes(mux)

	mcpServer := mcp.NewServer(cfg.Version, semanticService, db, logger)
	mux.Handle("/mcp", mcpServer.Handler())

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting insightsphere", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := editSessions.Prune(); n > 0 {
					logger.Debug("Pruned expired edit sessions", zap.Int("count", n))
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Startup.ShutdownGraceSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
