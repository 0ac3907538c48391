package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/usersync/internal/api"
	"github.com/stacklok/usersync/internal/config"
	"github.com/stacklok/usersync/internal/db"
	"github.com/stacklok/usersync/internal/httpclient"
	"github.com/stacklok/usersync/internal/lock"
	"github.com/stacklok/usersync/internal/sources"
	"github.com/stacklok/usersync/internal/store"
	pkgsync "github.com/stacklok/usersync/internal/sync"
	"github.com/stacklok/usersync/internal/sync/coordinator"
	"github.com/stacklok/usersync/internal/sync/state"
	"github.com/stacklok/usersync/internal/telemetry"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	tracerName = "github.com/stacklok/usersync"
)

// SyncAppOptions is a function that configures the sync app builder
type SyncAppOptions func(*syncAppConfig) error

// syncAppConfig collects the options of NewSyncApp
// It supports dependency injection for testing while providing sensible defaults for production
type syncAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	httpClient httpclient.Client
	txBeginner store.TxBeginner
	statusSvc  state.StateService
	passLock   lock.Lock

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...SyncAppOptions) (*syncAppConfig, error) {
	cfg := &syncAppConfig{
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.address == "" {
		cfg.address = cfg.config.Server.GetAddress()
	}

	return cfg, nil
}

// NewSyncApp wires the sync pipeline, the scheduler and the ops HTTP server.
// Storage defaults to PostgreSQL built from the database configuration.
func NewSyncApp(
	ctx context.Context,
	opts ...SyncAppOptions,
) (*SyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components := &AppComponents{}

	// Ensure cleanup happens on error
	var cleanupNeeded = true
	defer func() {
		if cleanupNeeded {
			components.Close(ctx)
		}
	}()

	components.Telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.config.Telemetry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	if err := buildStorageComponents(ctx, cfg, components); err != nil {
		return nil, fmt.Errorf("failed to build storage components: %w", err)
	}

	if err := buildSyncComponents(cfg, components); err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	// Create application context
	appCtx, cancel := context.WithCancel(ctx)

	// Cleanup is now handled by the app, not in defer
	cleanupNeeded = false

	return &SyncApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding server.address
func WithAddress(addr string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		parts := strings.SplitN(addr, ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		host, port := parts[0], parts[1]

		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithHTTPClient allows injecting the client used for both upstream APIs (for testing)
func WithHTTPClient(c httpclient.Client) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithStorage allows injecting the transaction source and status service (for testing).
// No database connection is opened when both are set.
func WithStorage(txBeginner store.TxBeginner, statusSvc state.StateService) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if txBeginner == nil || statusSvc == nil {
			return fmt.Errorf("storage overrides require both a transaction source and a status service")
		}
		cfg.txBeginner = txBeginner
		cfg.statusSvc = statusSvc
		return nil
	}
}

// WithLock allows injecting the pass lock (for testing)
func WithLock(l lock.Lock) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.passLock = l
		return nil
	}
}

// buildStorageComponents opens the database unless storage was injected
func buildStorageComponents(ctx context.Context, b *syncAppConfig, c *AppComponents) error {
	if b.txBeginner != nil {
		slog.Info("Using injected storage")
		c.StatusService = b.statusSvc
		return nil
	}

	conn, err := db.NewConnection(ctx, b.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Database = conn
	c.StatusService = state.NewDBStateService(conn.Pool, state.DefaultSyncName)
	b.txBeginner = store.NewPostgresTxBeginner(conn.Pool)
	return nil
}

// buildSyncComponents builds the synchronizer, runner and coordinator
func buildSyncComponents(b *syncAppConfig, c *AppComponents) error {
	slog.Info("Initializing sync components")

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = httpclient.NewDefaultClient(b.config.Sources.GetTimeout())
	}

	directory, err := sources.NewDirectoryClient(httpClient, b.config.Sources.GetDirectoryURL())
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}
	creditCards := sources.NewCreditCardClient(httpClient, b.config.Sources.GetCreditCardURL())

	tracer := c.Telemetry.TracerProvider().Tracer(tracerName)
	synchronizer := pkgsync.NewSynchronizer(directory, creditCards, pkgsync.WithTracer(tracer))

	syncMetrics, err := telemetry.NewSyncMetrics(c.Telemetry.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create sync metrics: %w", err)
	}

	c.Lock = b.passLock
	if c.Lock == nil {
		c.Lock = newLock(&b.config.Lock)
	}

	c.Runner = coordinator.NewRunner(
		synchronizer,
		b.txBeginner,
		c.StatusService,
		&b.config.Sync,
		coordinator.WithLock(c.Lock),
		coordinator.WithSyncMetrics(syncMetrics),
		coordinator.WithTracer(tracer),
	)
	c.SyncCoordinator = coordinator.New(c.Runner, &b.config.Sync)

	slog.Info("Sync components initialized successfully")
	return nil
}

// newLock picks the pass lock named by the lock configuration
func newLock(cfg *config.LockConfig) lock.Lock {
	switch cfg.GetType() {
	case config.LockTypeRedis:
	case config.LockTypeFile:
		path := cfg.File.GetPath()
		slog.Info("Using file pass lock", "path", path)
		return lock.NewFile(path)
	default:
		return lock.NewLocal()
	}

	redisCfg := cfg.Redis
	slog.Info("Using Redis pass lock", "address", redisCfg.GetAddr(), "key", redisCfg.GetKey())
	return lock.NewRedis(lock.RedisConfig{
		Addr:     redisCfg.GetAddr(),
		Username: redisCfg.Username,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
		Key:      redisCfg.GetKey(),
		TTL:      redisCfg.GetTTL(),
	})
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *syncAppConfig, c *AppComponents) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	// Use default middlewares if not provided
	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Traces and HTTP metrics come first to capture all requests
	telemetryMiddleware, err := telemetry.HTTPMiddleware(c.Telemetry.TracerProvider(), c.Telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry middleware: %w", err)
	}
	middlewares := append([]func(http.Handler) http.Handler{telemetryMiddleware}, b.middlewares...)

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(c.Telemetry.MetricsHandler()),
	}
	if c.Database != nil {
		serverOpts = append(serverOpts, api.WithReadinessCheck(c.Database.Ping))
	}
	router := api.NewServer(c.StatusService, serverOpts...)

	// Create HTTP server
	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server initialized successfully", "address", b.address)
	return server, nil
}
