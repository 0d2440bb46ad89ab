package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/providex/supplier-registry/internal/api"
	"github.com/providex/supplier-registry/internal/api/handler"
	"github.com/providex/supplier-registry/internal/api/metrics"
	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
	"github.com/providex/supplier-registry/internal/core/service"
	"github.com/providex/supplier-registry/internal/infrastructure/db/memory"
	mongostore "github.com/providex/supplier-registry/internal/infrastructure/db/mongo"
	redisfeed "github.com/providex/supplier-registry/internal/infrastructure/db/redis"
	"github.com/providex/supplier-registry/internal/pkg/config"
	"github.com/providex/supplier-registry/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Supplier Registry API
// @version                     1.0
// @description                 Per-user supplier registry keyed by CNPJ, with live listings.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Development(),
		Fields: map[string]string{"service": "supplier-registry", "app_id": cfg.Session.AppID},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var session ports.SessionService = service.NewSessionService(cfg.Session.AppID, cfg.Session.InitialToken, cfg.Session.TokenSecret, logger.Component("session"))
	ns, err := session.SignIn(ctx)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	store, checks, closeStore, err := buildStore(ctx, cfg, ns)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := service.NewSupplierRegistry(metrics.NewInstrumentedStore(store), ns, logger.Component("registry"))

	e := api.NewRouter(api.Dependencies{
		Registry:   registry,
		Logger:     logger.Component("http"),
		AuthSecret: cfg.Session.TokenSecret,
		UserID:     func() string { return ns.UserID },
		Ready:      ns.Ready,
		Checks:     checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.Store.Driver).
			Str("namespace", ns.CollectionPath()).
			Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// buildStore assembles the configured supplier backend and the readiness
// checks for whatever it connected to.
func buildStore(ctx context.Context, cfg *config.Config, ns domain.Namespace) (ports.SupplierStore, map[string]handler.DependencyCheck, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		return memory.NewSupplierStore(memory.NewDatabase(), ns), nil, func() {}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "supplier-registry",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	closers := []func(){func() { _ = client.Disconnect(context.Background()) }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	checks := map[string]handler.DependencyCheck{
		"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	var feed ports.ChangeFeed
	switch cfg.Store.FeedDriver {
	case config.FeedRedis:
		rdb, err := redisfeed.Connect(ctx, redisfeed.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		feed = redisfeed.NewChangeFeed(rdb)
	default:
		feed = mongostore.NewChangeStreamFeed(db)
	}

	store := mongostore.NewSupplierStore(db, ns, feed, logger.Component("supplier_store"))
	if err := store.EnsureIndexes(ctx); err != nil {
		closeAll()
		return nil, nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return store, checks, closeAll, nil
}
