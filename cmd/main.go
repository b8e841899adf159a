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

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"kitchen-flow/internal/cache"
	"kitchen-flow/internal/config"
	"kitchen-flow/internal/database"
	"kitchen-flow/internal/journal"
	"kitchen-flow/internal/journal/sqlite"
	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/messaging"
	"kitchen-flow/internal/restaurant"
	"kitchen-flow/internal/server"
	"kitchen-flow/internal/services/kitchen"
	"kitchen-flow/internal/services/notification"
	"kitchen-flow/internal/services/orders"
	"kitchen-flow/internal/services/products"
	"kitchen-flow/internal/services/reservations"
	"kitchen-flow/internal/services/tables"
	"kitchen-flow/internal/services/users"
)

func main() {
	app := &cli.App{
		Name:  "kitchen-flow",
		Usage: "restaurant front-of-house backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"KITCHEN_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: runServe,
			},
			{
				Name:  "migrate",
				Usage: "apply the database schema",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "down", Usage: "roll back `N` migrations instead of applying them"},
				},
				Action: runMigrate,
			},
			{
				Name:  "notification-subscriber",
				Usage: "print restaurant notifications as they happen",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "prefetch", Value: 10, Usage: "RabbitMQ prefetch count"},
				},
				Action: runNotificationSubscriber,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
}

func runServe(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	log := logger.New("api")
	requestID := logger.GenerateRequestID()

	ctx, stop := signalContext(c)
	defer stop()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := database.RunMigrations(cfg.MigrateURL(), log); err != nil {
		return err
	}

	journalRepo, err := sqlite.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journalRepo.Close()

	sinks := []restaurant.EventSink{journal.NewSink(journalRepo)}
	var publisher *messaging.Publisher
	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()
		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		publisher = messaging.NewPublisher(conn, log, messaging.DefaultPublishBuffer)
		sinks = append(sinks, publisher)
	}

	productCache := openCache(ctx, cfg, log, requestID)

	catalog, err := restaurant.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	mesas := tables.NewRepository(db)
	board := restaurant.NewService(catalog,
		restaurant.WithTableDirectory(tables.NewDirectory(mesas)),
		restaurant.WithSinks(sinks...),
		restaurant.WithLogger(log),
	)

	handler := server.NewRouter(server.Handlers{
		Users:        users.NewHandler(users.NewService(users.NewRepository(db), log), log),
		Products:     products.NewHandler(products.NewService(products.NewRepository(db), productCache, cfg.Redis.TTL, log), log),
		Tables:       tables.NewHandler(mesas, log),
		Orders:       orders.NewHandler(orders.NewService(orders.NewRepository(db), log, sinks...), log),
		Kitchen:      kitchen.NewHandler(board, journalRepo, log),
		Reservations: reservations.NewHandler(board, log),
	}, db, cfg.Server.FrontendURL, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The publisher outlives the HTTP server so events from requests still
	// in flight during shutdown are flushed.
	publishCtx, stopPublishing := context.WithCancel(context.WithoutCancel(ctx))
	defer stopPublishing()

	g, gctx := errgroup.WithContext(ctx)
	if publisher != nil {
		g.Go(func() error { return publisher.Run(publishCtx) })
	}
	g.Go(func() error {
		log.Info("service_started", fmt.Sprintf("Kitchen Flow API started on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port":         cfg.Server.Port,
			"frontend_url": cfg.Server.FrontendURL,
			"rabbitmq":     cfg.RabbitMQ.Enabled,
			"redis":        cfg.Redis.Enabled,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("graceful_shutdown", "Shutting down HTTP server", requestID, nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		defer stopPublishing()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service_failed", "API stopped with an error", requestID, err, nil)
		return err
	}
	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
	return nil
}

// openCache returns the Redis cache, or a no-op cache when Redis is disabled
// or unreachable.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger, requestID string) cache.Cache {
	if !cfg.Redis.Enabled {
		return cache.Nop{ServiceName: "api"}
	}

	c := cache.NewRedisCache(cfg.Redis.Addr, "api")
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, c); err != nil {
		log.Warn("redis_unavailable", "Redis not reachable, productos are served uncached", requestID, map[string]interface{}{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
		return cache.Nop{ServiceName: "api"}
	}
	log.Info("redis_connected", "Connected to Redis", requestID, map[string]interface{}{"addr": cfg.Redis.Addr})
	return c
}

func runMigrate(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	log := logger.New("migrate")

	if steps := c.Int("down"); steps > 0 {
		return database.RollbackMigrations(cfg.MigrateURL(), steps, log)
	}
	return database.RunMigrations(cfg.MigrateURL(), log)
}

func runNotificationSubscriber(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	log := logger.New("notification-subscriber")

	ctx, stop := signalContext(c)
	defer stop()

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", c.Int("prefetch"))
	return notification.NewSubscriber(consumer, log).Start(ctx)
}
