// brentdashd serves the Brent crude dashboard API.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/petrodata/brentdash/amqp"
	"github.com/petrodata/brentdash/api"
	"github.com/petrodata/brentdash/cache"
	"github.com/petrodata/brentdash/dataset"
	"github.com/petrodata/brentdash/env"
	"github.com/petrodata/brentdash/httpmiddlewares"
	"github.com/petrodata/brentdash/httpserver"
	"github.com/petrodata/brentdash/lock"
	"github.com/petrodata/brentdash/logging"
	"github.com/petrodata/brentdash/retry"
	"github.com/petrodata/brentdash/tracing"
)

const appName = "brentdash"

func main() {
	logging.Init(logging.Config{
		DebugMode: env.GetBoolDefault("DEBUG", false),
		LogLevel:  logging.ParseLevel(env.GetDefault("LOG_LEVEL", "info")),
		SentryConfig: sentry.ClientOptions{
			Dsn:         env.GetDefault("SENTRY_DSN", ""),
			Environment: env.GetDefault("SENTRY_ENVIRONMENT", ""),
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingShutdown, err := tracing.Init()
	if err != nil {
		slog.Error("cannot initialize tracing", "err", err)
		os.Exit(1)
	}
	defer tracingShutdown(context.Background())

	svc, store := loadDataset(ctx)

	var redisClient *redis.Client
	if addr := env.GetDefault("REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			DB:       env.GetIntDefault("REDIS_DB", 0),
			Username: env.GetDefault("REDIS_USERNAME", ""),
			Password: env.GetDefault("REDIS_PASSWORD", ""),
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Error("cannot reach redis", "addr", addr, "err", err)
			os.Exit(1)
		}
	}

	cfg := api.Config{
		Logger:    slog.Default(),
		Responses: responseCache(ctx, redisClient),
		Store:     store,
		DataDir:   env.GetDefault("DATA_DIR", "data"),
	}
	if redisClient != nil {
		cfg.ReloadLock = &lock.DistributedLock{Client: redisClient}
	}

	uri := env.GetDefault("RABBITMQ_URI", "")
	queue := env.GetDefault("RABBITMQ_QUEUE", "brentdash-refresh")
	if uri != "" {
		err := retry.Do(func() error { return amqp.Setup(uri, queue) }, 5, time.Second)
		if err != nil {
			slog.Error("cannot set up rabbitmq topology", "err", err)
			os.Exit(1)
		}
		cfg.Publisher = amqp.NewPublisher(appName, uri)
	}

	server := api.NewServer(svc, cfg)
	if uri != "" {
		startConsumer(ctx, uri, queue, server)
	}
	serve(ctx, server)
}

// loadDataset prefers the sqlite store when configured, seeding it from the
// CSV artifacts on first boot.
func loadDataset(ctx context.Context) (*dataset.Service, *dataset.Store) {
	dataDir := env.GetDefault("DATA_DIR", "data")

	dbPath := env.GetDefault("DATASET_DB_PATH", "")
	if dbPath == "" {
		svc, err := dataset.Load(dataDir)
		if err != nil {
			slog.Error("cannot load dataset", "dir", dataDir, "err", err)
			os.Exit(1)
		}
		return svc, nil
	}

	store, err := dataset.NewSQLiteStore(dbPath)
	if err != nil {
		slog.Error("cannot open dataset store", "path", dbPath, "err", err)
		os.Exit(1)
	}

	svc, err := store.LoadService()
	if err != nil {
		slog.Error("cannot read dataset store", "err", err)
		os.Exit(1)
	}
	if svc.PriceCount() > 0 {
		return svc, store
	}

	slog.Info("dataset store is empty, seeding from csv", "dir", dataDir)
	seeded, err := dataset.Load(dataDir)
	if err != nil {
		slog.Error("cannot load dataset", "dir", dataDir, "err", err)
		os.Exit(1)
	}
	if err := store.Replace(seeded.Prices(), seeded.EventTable()); err != nil {
		slog.Error("cannot seed dataset store", "err", err)
		os.Exit(1)
	}
	return seeded, store
}

func responseCache(ctx context.Context, redisClient *redis.Client) cache.Cacher {
	switch backend := env.GetDefault("CACHE_BACKEND", "memory"); backend {
	case "memory":
		return cache.NewMemoryCacher()
	case "redis":
		if redisClient == nil {
			slog.Error("CACHE_BACKEND=redis needs REDIS_ADDR")
			os.Exit(1)
		}
		return cache.NewRedisCacher(redisClient, "responses")
	case "sql":
		driver := env.GetDefault("CACHE_DB_DRIVER", "sqlite3")
		db, err := sql.Open(driver, env.GetRequired("CACHE_DB_DSN"))
		if err != nil {
			slog.Error("cannot open cache database", "err", err)
			os.Exit(1)
		}
		cacher, err := cache.NewSqlCacher(ctx, db, driver, "responses")
		if err != nil {
			slog.Error("cannot initialize sql cacher", "err", err)
			os.Exit(1)
		}
		return cacher
	case "none":
		return nil
	default:
		slog.Error("unknown CACHE_BACKEND", "backend", backend)
		os.Exit(1)
		return nil
	}
}

func startConsumer(ctx context.Context, uri, queue string, server *api.Server) {
	start := amqp.MakeConsumer(amqp.ConsumerConfig{
		AppName:  appName,
		URI:      uri,
		Queue:    queue,
		Workers:  env.GetIntDefault("RABBITMQ_WORKERS", 2),
		Prefetch: env.GetIntDefault("RABBITMQ_PREFETCH", 8),
		Handler:  server.HandleRefresh,
	})
	if err := start(ctx); err != nil {
		slog.Error("cannot start refresh consumer", "err", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, server *api.Server) {
	mux := httpserver.New()
	mux.WithMiddlewares(
		httpmiddlewares.Sentry,
		httpmiddlewares.Recover,
		httpmiddlewares.RequestID,
		httpmiddlewares.PrometheusExporter(appName, "^/metrics$"),
	)

	var adminMW []httpserver.Middleware
	if secret := env.GetDefault("JWT_SECRET", ""); secret != "" {
		adminMW = append(adminMW,
			httpmiddlewares.BearerAuth[api.AdminClaims]([]byte(secret)),
			httpmiddlewares.AuthenticatedOnly,
		)
	}
	server.Routes(mux, adminMW...)

	var metrics http.Handler = promhttp.Handler()
	if pass := env.GetDefault("METRICS_PASSWORD", ""); pass != "" {
		metrics = httpmiddlewares.Chain(
			httpmiddlewares.BasicAuth(env.GetDefault("METRICS_USER", "prometheus"), pass),
			httpmiddlewares.AuthenticatedOnly,
		)(metrics)
	}
	mux.Handle("GET /metrics", metrics)

	addr := env.GetDefault("HTTP_ADDR", ":5000")
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       env.GetDurationDefault("HTTP_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      env.GetDurationDefault("HTTP_WRITE_TIMEOUT", 60*time.Second),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), env.GetDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second))
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("serving dashboard api", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("http server failed", "err", err)
		os.Exit(1)
	}
}
