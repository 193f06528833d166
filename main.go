package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"reservation-system/config"
	"reservation-system/routes"
	"reservation-system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.DB, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, cleanup, err := newTokenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer cleanup()

	r, err := routes.SetupRouter(routes.Dependencies{
		Config:  cfg,
		DB:      db,
		Logger:  logger,
		Metrics: config.NewMetrics(),
		Tokens:  tokens,
	})
	if err != nil {
		logger.Fatal("Failed to set up router", zap.Error(err))
	}
	printRoutes(logger, r)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server exited")
}

// newTokenStore uses Redis when REDIS_ADDR is set, otherwise an in-process
// store whose expired entries are purged by a cron job.
func newTokenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.TokenStore, func(), error) {
	if cfg.Redis.Addr != "" {
		client, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Session revocations stored in Redis", zap.String("addr", cfg.Redis.Addr))
		return services.NewRedisTokenStore(client), func() { _ = client.Close() }, nil
	}

	store := services.NewMemoryTokenStore()
	purger, err := store.StartPurger("@every 10m", func(removed int) {
		if removed > 0 {
			logger.Debug("Purged expired session revocations", zap.Int("removed", removed))
		}
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Session revocations stored in memory")
	return store, func() { <-purger.Stop().Done() }, nil
}

func printRoutes(logger *zap.Logger, r *gin.Engine) {
	for _, route := range r.Routes() {
		logger.Debug("Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}
}
