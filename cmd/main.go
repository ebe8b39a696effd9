package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/bus-maintenance/internal/auth"
	"github.com/ukydev/bus-maintenance/internal/config"
	"github.com/ukydev/bus-maintenance/internal/db"
	"github.com/ukydev/bus-maintenance/internal/handlers"
	"github.com/ukydev/bus-maintenance/internal/logging"
	"github.com/ukydev/bus-maintenance/internal/workflow"
	"go.mongodb.org/mongo-driver/mongo"
)

// app is the wired server with the resources it must release on shutdown.
type app struct {
	handler http.Handler
	client  *mongo.Client
}

func newApp(ctx context.Context, cfg config.Config, logger *log.Logger) (*app, error) {
	a := &app{}
	var store *db.Store
	switch cfg.Storage {
	case config.StorageMemory:
		store = db.NewMemoryStore()
		logger.Warn("Using in-memory storage; data is lost on restart")
	default:
		client, err := db.ConnectMongo(cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.Mongo.Database)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		a.client = client
		store = db.NewMongoStore(database)
		logger.WithField("database", cfg.Mongo.Database).Info("Connected to MongoDB")
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		s, err := auth.RandomSecret()
		if err != nil {
			return nil, err
		}
		secret = s
		logger.Warn("JWT_SECRET not set; tokens will not survive a restart")
	}
	authService, err := auth.NewService(secret, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}

	a.handler = handlers.NewRouter(handlers.RouterConfig{
		Auth:             authService,
		Users:            store.Users,
		Service:          workflow.NewLoggingService(workflow.NewEngine(store), logger),
		Logger:           logger,
		AllowedOrigins:   []string{cfg.Frontend.URL},
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimitMax:     cfg.RateLimit.Max,
		RateLimitWindow:  cfg.RateLimit.Window,
	})
	return a, nil
}

func (a *app) close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logger, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithFields(log.Fields{"addr": srv.Addr, "storage": cfg.Storage}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP shutdown failed")
	}
	if err := a.close(shutdownCtx); err != nil {
		logger.WithError(err).Error("MongoDB disconnect failed")
	}
}
