package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/recordsearch/pkg/config"
	"github.com/platinummonkey/recordsearch/pkg/executor"
	"github.com/platinummonkey/recordsearch/pkg/httputil"
	"github.com/platinummonkey/recordsearch/pkg/observability"
	"github.com/platinummonkey/recordsearch/pkg/schema"
	"github.com/platinummonkey/recordsearch/pkg/search"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "recordsearchd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	appLog := logrus.New()
	appLog.SetFormatter(&logrus.JSONFormatter{})
	appLog.SetLevel(logrusLevel(cfg.Observability.LogLevel))

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing OpenTelemetry: %w", err)
	}

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	logger.WithField("driver", cfg.Database.Driver).Info("Database connection established")

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
		metrics.CollectDBStats(db)
	}

	execOpts := []executor.SQLOption{executor.WithLogger(appLog)}
	if metrics != nil {
		execOpts = append(execOpts, executor.WithMetrics(metrics))
	}

	var cache *executor.ResultCache
	if cfg.Cache.Enabled {
		cache, err = executor.NewResultCacheFromURL(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("connecting result cache: %w", err)
		}
		execOpts = append(execOpts, executor.WithCache(cache))
		logger.Info("Result cache enabled")
	}

	exec, err := executor.NewSQLExecutor(db, cfg.Database.Dialect(), execOpts...)
	if err != nil {
		return fmt.Errorf("creating executor: %w", err)
	}

	registry := schema.NewRegistry(exec)
	if cfg.SchemaFile != "" {
		if err := registerSchemas(ctx, registry, cfg.SchemaFile, logger); err != nil {
			return err
		}
	}

	serviceOpts := []search.ServiceOption{search.WithLogger(appLog)}
	if metrics != nil {
		serviceOpts = append(serviceOpts, search.WithMetrics(metrics))
	}
	service := search.NewService(registry, exec, serviceOpts...)

	apiServer := buildAPIServer(cfg, service, appLog)
	healthServer := buildHealthServer(cfg, db, cache, metrics)

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	shutdown.RegisterServer(apiServer)
	shutdown.RegisterServer(healthServer)
	shutdown.RegisterFunc(func(context.Context) error { return db.Close() })
	if cache != nil {
		shutdown.RegisterFunc(func(context.Context) error { return cache.Close() })
	}
	if providers != nil {
		shutdown.RegisterFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, providers, logger)
		})
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("Starting search API server")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("API server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Starting health/metrics server")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(shutdown.Wait)

	return g.Wait()
}

// registerSchemas loads the schema declaration file and registers every
// record type it declares.
func registerSchemas(ctx context.Context, registry *schema.Registry, path string, logger *observability.Logger) error {
	defs, err := schema.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading schema file %s: %w", path, err)
	}
	for typeID, def := range defs {
		if err := registry.Register(ctx, typeID, def); err != nil {
			return fmt.Errorf("registering %s: %w", typeID, err)
		}
		logger.WithField("record_type", typeID).Info("Registered search schema")
	}
	return nil
}

func buildAPIServer(cfg *config.Config, service *search.Service, appLog *logrus.Logger) *http.Server {
	router := mux.NewRouter()
	search.NewHandler(service).RegisterRoutes(router)

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(appLog),
		httputil.LoggingMiddleware(appLog),
		httputil.TimeoutMiddleware(cfg.Server.WriteTimeout),
	)(router)

	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      otelhttp.NewHandler(handler, "recordsearch"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func buildHealthServer(cfg *config.Config, db *sql.DB, cache *executor.ResultCache, metrics *observability.Metrics) *http.Server {
	router := mux.NewRouter()

	var redisClient *redis.Client
	if cache != nil {
		redisClient = cache.Client()
	}
	health := observability.NewHealthChecker(db, redisClient)
	router.HandleFunc("/healthz", health.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", health.Readiness).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	return &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: router,
	}
}

func logrusLevel(level observability.LogLevel) logrus.Level {
	switch level {
	case observability.DebugLevel:
		return logrus.DebugLevel
	case observability.WarnLevel:
		return logrus.WarnLevel
	case observability.ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
