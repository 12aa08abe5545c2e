// Command storefront serves the storefront over HTTP on the backend selected
// by STOREFRONT_BACKEND.
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

	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/api"
	"github.com/marketly/storefront/internal/api/handler"
	"github.com/marketly/storefront/internal/core/cart"
	"github.com/marketly/storefront/internal/core/ports"
	"github.com/marketly/storefront/internal/core/service"
	"github.com/marketly/storefront/internal/core/session"
	"github.com/marketly/storefront/internal/infrastructure/broker/rabbitmq"
	mongostore "github.com/marketly/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/marketly/storefront/internal/infrastructure/db/redis"
	"github.com/marketly/storefront/internal/infrastructure/ephemeral"
	"github.com/marketly/storefront/internal/infrastructure/objectstore/gcs"
	"github.com/marketly/storefront/internal/infrastructure/queue"
	"github.com/marketly/storefront/internal/infrastructure/remote"
	"github.com/marketly/storefront/internal/infrastructure/slot"
	"github.com/marketly/storefront/internal/pkg/config"
	"github.com/marketly/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

// closer releases a resource acquired while wiring the backend.
type closer func(ctx context.Context) error

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront",
		Backend: cfg.Backend,
	})

	sessionSlot, err := slot.NewFileSlot(cfg.SessionDir)
	if err != nil {
		return err
	}

	backend, checks, closers, err := buildBackend(ctx, cfg, sessionSlot, logger.Component("bootstrap"))
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](cctx); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}()
	if err != nil {
		return err
	}

	publisher, err := buildPublisher(cfg, checks, logger.Component("events"))
	if err != nil {
		return err
	}
	if c, ok := publisher.(interface{ Close() error }); ok {
		defer c.Close()
	}

	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, publisher, log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	shopCart := cart.New()
	sessions := session.NewManager(backend, log)
	go sessions.CheckSession(ctx)

	e := api.NewRouter(api.Dependencies{
		Backend:  backend.Name(),
		Sessions: sessions,
		Cart:     shopCart,
		Products: backend,
		Catalog:  service.NewCatalogService(backend, logger.Component("catalog")),
		Checkout: service.NewCheckoutService(backend, shopCart, dispatcher, logger.Component("checkout")),
		Orders:   service.NewOrderService(backend, dispatcher, logger.Component("orders")),
		Checks:   checks,
	}, logger.Component("http"))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", backend.Name()).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// buildBackend selects exactly one backend. The returned closers are valid
// even when err is not nil.
func buildBackend(ctx context.Context, cfg *config.Config, s slot.Slot, log zerolog.Logger) (ports.Backend, map[string]handler.Check, []closer, error) {
	checks := map[string]handler.Check{}
	if cfg.Backend == config.BackendEphemeral {
		log.Info().Float64("latency_scale", cfg.Ephemeral.LatencyScale).Msg("using ephemeral backend")
		b := ephemeral.New(ctx, s, ephemeral.Latency{
			Scale:  cfg.Ephemeral.LatencyScale,
			Jitter: cfg.Ephemeral.LatencyJitter,
		}, logger.Get())
		return b, checks, nil, nil
	}

	rc := cfg.Remote
	var closers []closer

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: rc.MongoURI, Database: rc.DatabaseID})
	if err != nil {
		return nil, nil, closers, err
	}
	closers = append(closers, mongoClient.Disconnect)
	checks["mongodb"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }

	repos := mongostore.NewRepositories(db, mongostore.Collections{
		Accounts: rc.AccountsCollectionID,
		Users:    rc.UsersCollectionID,
		Products: rc.ProductsCollectionID,
		Orders:   rc.OrdersCollectionID,
	})
	if err := repos.EnsureIndexes(ctx); err != nil {
		return nil, nil, closers, err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: rc.RedisAddr, Password: rc.RedisPassword, DB: rc.RedisDB})
	if err != nil {
		return nil, nil, closers, err
	}
	closers = append(closers, func(context.Context) error { return rdb.Close() })
	checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb, 2*time.Second) }

	gcsCfg := gcs.Config{
		CredentialsFile: rc.CredentialsFile,
		ProjectID:       rc.ProjectID,
		Bucket:          rc.BucketID,
		PublicBaseURL:   rc.Endpoint,
	}
	storageClient, err := gcs.NewClient(ctx, gcsCfg)
	if err != nil {
		return nil, nil, closers, err
	}
	closers = append(closers, func(context.Context) error { return storageClient.Close() })
	files := gcs.NewFileStore(storageClient, gcsCfg)
	if err := files.EnsureBucket(ctx); err != nil {
		return nil, nil, closers, err
	}

	b, err := remote.New(remote.Stores{
		Accounts: repos.Accounts,
		Profiles: repos.Profiles,
		Products: repos.Products,
		Orders:   repos.Orders,
		Files:    files,
		Sessions: redisstore.NewSessionStore(rdb),
	}, s, remote.Config{Secret: rc.SessionSecret, SessionTTL: rc.SessionTTL}, logger.Get())
	if err != nil {
		return nil, nil, closers, err
	}
	log.Info().Str("database", rc.DatabaseID).Str("bucket", rc.BucketID).Msg("using remote backend")
	return b, checks, closers, nil
}

// buildPublisher returns the RabbitMQ publisher when RABBITMQ_URI is set and
// a log-only publisher otherwise.
func buildPublisher(cfg *config.Config, checks map[string]handler.Check, log zerolog.Logger) (ports.EventPublisher, error) {
	if cfg.Events.RabbitURI == "" {
		log.Info().Msg("RABBITMQ_URI not set, order events are only logged")
		return queue.NewLogPublisher(logger.Get()), nil
	}
	p, err := rabbitmq.Dial(cfg.Events.RabbitURI, cfg.Events.Queue)
	if err != nil {
		return nil, err
	}
	checks["rabbitmq"] = func(context.Context) error {
		if !p.Healthy() {
			return errors.New("connection closed")
		}
		return nil
	}
	log.Info().Str("queue", cfg.Events.Queue).Msg("publishing order events to rabbitmq")
	return p, nil
}
