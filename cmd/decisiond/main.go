package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/loan-decision/internal/application/usecase"
	"github.com/bibbank/loan-decision/internal/domain/port"
	"github.com/bibbank/loan-decision/internal/domain/service"
	"github.com/bibbank/loan-decision/internal/infrastructure/config"
	"github.com/bibbank/loan-decision/internal/infrastructure/credentials"
	"github.com/bibbank/loan-decision/internal/infrastructure/directory"
	pgRepo "github.com/bibbank/loan-decision/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/loan-decision/internal/presentation/grpc"
	"github.com/bibbank/loan-decision/internal/presentation/rest"
	"github.com/bibbank/loan-decision/pkg/auth"
	"github.com/bibbank/loan-decision/pkg/observability"
	pkgpostgres "github.com/bibbank/loan-decision/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("decision service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("decision service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	policy, err := cfg.LoanPolicy()
	if err != nil {
		return err
	}

	logger.Info("starting decision service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"directory", cfg.DirectoryBackend,
	)

	// --- Telemetry ----------------------------------------------------------
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without trace export", "error", err)
	} else {
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			_ = shutdownTracer(flushCtx) //nolint:errcheck // best-effort tracer shutdown
		}()
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	// --- Directory ----------------------------------------------------------
	lookup, checks, closeDirectory, err := openDirectory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDirectory()

	// --- Use case -----------------------------------------------------------
	engine := service.NewDecisionEngine(lookup, service.WithPolicy(policy))
	decideUC, err := usecase.NewDecideLoanUseCase(
		engine,
		logger,
		meterProvider.Meter(cfg.ServiceName),
		otel.Tracer(cfg.ServiceName),
	)
	if err != nil {
		return fmt.Errorf("init decide use case: %w", err)
	}

	// --- Auth ---------------------------------------------------------------
	jwtSvc, err := newJWTService(cfg)
	if err != nil {
		return fmt.Errorf("init JWT service: %w", err)
	}
	operators, err := credentials.ParseStore(cfg.AuthUsers)
	if err != nil {
		return fmt.Errorf("parse AUTH_USERS: %w", err)
	}
	if operators.Len() == 0 {
		logger.Warn("AUTH_USERS is empty, POST /api/authenticate will refuse everyone")
	}

	// --- gRPC server --------------------------------------------------------
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.ServerConfig{
		ServiceName: cfg.ServiceName,
		CertFile:    cfg.TLS.CertFile,
		KeyFile:     cfg.TLS.KeyFile,
		Reflection:  cfg.GRPCReflection,
	}, grpcPresentation.NewDecisionHandler(decideUC, logger), jwtSvc, logger)
	if err != nil {
		return err
	}

	// --- HTTP server --------------------------------------------------------
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Decisions: rest.NewDecisionHandler(decideUC, logger),
			Auth:      rest.NewAuthHandler(operators, jwtSvc, logger),
			Health:    rest.NewHealthHandler(cfg.ServiceName, checks, logger),
			Metrics:   metricsHandler,
			JWT:       jwtSvc,
			RateLimit: cfg.RateLimit,
			Logger:    logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Serve until a signal or a server failure ---------------------------
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.ListenAndServe(cfg.GRPCAddr()); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		grpcServer.GracefulStop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// openDirectory builds the configured profile directory, its readiness checks
// and a function releasing its connections.
func openDirectory(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.ProfileLookup, map[string]rest.CheckFunc, func(), error) {
	switch cfg.DirectoryBackend {
	case config.BackendPostgres:
		return openPostgresDirectory(ctx, cfg, logger)

	case config.BackendKafka:
		loadCtx, loadCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer loadCancel()
		dir, err := directory.NewKafkaLoader(cfg.KafkaClient(), cfg.Kafka.ProfileTopic, logger).Load(loadCtx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load profile snapshot: %w", err)
		}
		return dir, map[string]rest.CheckFunc{"directory": nonEmpty(dir)}, func() {}, nil

	default:
		records := directory.DefaultSeed()
		if cfg.SeedFile != "" {
			var err error
			if records, err = directory.LoadSeedFile(cfg.SeedFile); err != nil {
				return nil, nil, nil, err
			}
		}
		dir, err := directory.NewMemoryDirectory(records)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("build memory directory: %w", err)
		}
		logger.Info("memory directory ready", "applicants", dir.Len())
		return dir, map[string]rest.CheckFunc{"directory": nonEmpty(dir)}, func() {}, nil
	}
}

func openPostgresDirectory(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.ProfileLookup, map[string]rest.CheckFunc, func(), error) {
	pgCfg := cfg.Postgres()

	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), cfg.DB.Migrations); err != nil {
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database")

	repo := pgRepo.NewCreditProfileRepo(pool)
	if n, err := repo.Count(dbCtx); err == nil {
		logger.Info("profile table ready", "applicants", n)
	}

	checks := map[string]rest.CheckFunc{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
	}

	client, err := directory.NewRedisClient(dbCtx, cfg.Redis.URL)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	if client == nil {
		return repo, checks, pool.Close, nil
	}

	logger.Info("profile cache enabled", "ttl", cfg.Redis.TTL)
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	cleanup := func() {
		_ = client.Close()
		pool.Close()
	}
	return directory.NewCachedDirectory(repo, client, cfg.Redis.TTL, logger), checks, cleanup, nil
}

func nonEmpty(dir *directory.MemoryDirectory) rest.CheckFunc {
	return func(context.Context) error {
		if dir.Len() == 0 {
			return errors.New("profile directory is empty")
		}
		return nil
	}
}

// newJWTService picks the signing mode: RSA private key (issue and validate),
// RSA public key (validate only) or the shared HMAC secret.
func newJWTService(cfg config.Config) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	}

	switch {
	case cfg.JWT.PrivateKeyPEM != "":
		jwtCfg.PrivateKeyPEM = cfg.JWT.PrivateKeyPEM
	case cfg.JWT.PrivateKeyFile != "":
		key, err := auth.LoadKeyFromFile(cfg.JWT.PrivateKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PrivateKeyPEM = string(key)
	case cfg.JWT.PublicKeyPEM != "":
		jwtCfg.PublicKeyPEM = cfg.JWT.PublicKeyPEM
	case cfg.JWT.PublicKeyFile != "":
		key, err := auth.LoadKeyFromFile(cfg.JWT.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(key)
	default:
		jwtCfg.Secret = cfg.JWT.Secret
	}

	return auth.NewJWTService(jwtCfg)
}
