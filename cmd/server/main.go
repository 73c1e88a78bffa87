// @title           Pedium API
// @version         1.0.0
// @description     Blogging platform API with block-based articles, AI enrichment, and social interactions

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:9000
// @BasePath  /

// @securityDefinitions.apikey SessionAuth
// @in cookie
// @name pedium_session
// @description Session cookie issued by /login, /signup, or the Google callback

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

	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/router"
	"pedium/internal/services"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("starting pedium")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	logger.Info("configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Document store client and reachability probe. Startup proceeds on
	// a failed probe: requests answer with the remediation payload until
	// the backend comes up.
	store := documents.NewClient(cfg.Documents, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.Health(ctx); err != nil {
		logger.Warn("document store is unreachable at startup",
			zap.String("endpoint", cfg.Documents.Endpoint),
			zap.Error(err),
		)
	} else {
		logger.Info("document store reachable", zap.String("endpoint", cfg.Documents.Endpoint))
	}
	cancel()

	serviceCollection, err := services.NewServiceCollection(store, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}

	handler := router.New(serviceCollection, cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("service shutdown failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// initLogger builds the zap logger for the current environment
func initLogger() (*zap.Logger, error) {
	if os.Getenv("GO_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
