package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"golang.org/x/sync/errgroup"

	"kudos/internal/adapters/gateway"
	"kudos/internal/adapters/http/api"
	"kudos/internal/adapters/repository"
	"kudos/internal/app"
	"kudos/internal/config"
	"kudos/pkg/logger"
	"kudos/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since the logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Open the score store: SQLite when a DSN is configured, memory otherwise.
	var store repository.Store
	if cfg.DatabaseDSN != "" {
		s, err := repository.OpenSQLite(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Error(ctx, "failed to open score database", logger.Error(err))
			return
		}
		store = s
		log.Info(ctx, "using sqlite store", logger.String("dsn", cfg.DatabaseDSN))
	}

	gw := gateway.NewClient(cfg.GatewayURL,
		gateway.WithToken(cfg.GatewayToken),
		gateway.WithInsecureTLS(cfg.GatewayInsecureTLS),
	)

	opts := []app.Option{
		app.WithLogger(log),
		app.WithStore(store),
		app.WithGateway(gw),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxOps(cfg.MaxOps),
		app.WithBotUser(cfg.BotUserID),
		app.WithTokens(cfg.RewardToken, cfg.PenaltyToken),
		app.WithSecretSalt(cfg.SecretSalt),
	}
	if cfg.CompensationEnabled {
		opts = append(opts, app.WithCompensation(cfg.PrivilegedActor))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx, svc)

	apiServer := api.NewServer(svc, api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.RecoveryHandler()(apiServer.Router()),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error(context.Background(), "server failed", logger.Error(err))
		return
	}

	log.Info(context.Background(), "server stopped")
}

// startSystemMetricsUpdater refreshes cheap runtime gauges periodically.
func startSystemMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateQueueSize(svc.QueueLen(ctx))
			metrics.UpdateTrackedItems(svc.Count(ctx))
		}
	}
}
