// Package app wires the catalog service together: configuration, storage,
// messaging, tracing and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dkocak/librarian/internal/auth"
	"github.com/dkocak/librarian/internal/config"
	"github.com/dkocak/librarian/internal/event"
	handler "github.com/dkocak/librarian/internal/handler/http"
	"github.com/dkocak/librarian/internal/repository/postgres"
	redisrepo "github.com/dkocak/librarian/internal/repository/redis"
	"github.com/dkocak/librarian/internal/service"
	"github.com/dkocak/librarian/migrations"
	"github.com/dkocak/librarian/pkg/database"
	"github.com/dkocak/librarian/pkg/health"
	pkgkafka "github.com/dkocak/librarian/pkg/kafka"
	"github.com/dkocak/librarian/pkg/tracing"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 120 * time.Second

	shutdownTimeout = 5 * time.Second
	tracerTimeout   = 3 * time.Second

	bookCacheTTL = time.Hour
)

// App holds the running application and its long-lived resources.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
	producer    *pkgkafka.Producer
	server      *http.Server

	shutdownTracer func(context.Context) error
}

// NewApp builds the application: it connects to PostgreSQL, Redis and Kafka,
// runs database migrations and assembles the HTTP handler chain.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "librarian",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSample,
		Enabled:        cfg.OTLPEndpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to postgres", "host", pgCfg.Host, "database", pgCfg.DBName)
	database.RegisterPoolMetrics(pool, "librarian")
	database.SetSlowQueryLogging(200*time.Millisecond, logger)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisCfg, err := redisConfigFromAddr(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		pool.Close()
		return nil, err
	}
	redisClient, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)

	tokens := auth.NewTokenManager(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.JWTAccessExpiry,
		cfg.JWTRefreshExpiry,
	)

	userRepo := postgres.NewUserRepository(pool)
	bookRepo := postgres.NewBookRepository(pool)
	authorRepo := postgres.NewAuthorRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	bookCache := redisrepo.NewBookCache(redisClient, bookCacheTTL)

	events := event.NewProducer(producer, logger)
	authService := service.NewAuthService(userRepo, tokens, events, logger)
	catalogService := service.NewCatalogService(bookRepo, authorRepo, categoryRepo, bookCache, events, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(authService, catalogService, tokens, healthHandler, logger, handler.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		server:         server,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails. Shutdown is always attempted before returning.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr, "environment", a.cfg.Environment)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	case err := <-errCh:
		a.logger.Error("http server failed", "error", err)
		shutdownErr := a.Shutdown()
		return errors.Join(err, shutdownErr)
	}
}

// Shutdown drains the HTTP server, flushes the tracer and closes the Kafka
// producer, Redis client and connection pool, in that order.
func (a *App) Shutdown() error {
	var errs []error

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	tracerCtx, tracerCancel := context.WithTimeout(context.Background(), tracerTimeout)
	defer tracerCancel()
	if err := a.shutdownTracer(tracerCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}

	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
	}
	if err := a.redisClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis client: %w", err))
	}
	a.pool.Close()

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func redisConfigFromAddr(addr string, db int) (database.RedisConfig, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("parse redis address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("parse redis port %q: %w", portStr, err)
	}
	cfg := database.DefaultRedisConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.DB = db
	return cfg, nil
}
