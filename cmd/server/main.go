package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"cis/internal/identifier/handler"
	idmetrics "cis/internal/identifier/metrics"
	"cis/internal/identifier/ports"
	"cis/internal/identifier/service"
	"cis/internal/identifier/store/memory"
	pgstore "cis/internal/identifier/store/postgres"
	"cis/internal/keylock"
	"cis/internal/platform/config"
	"cis/internal/platform/httpserver"
	"cis/internal/platform/logger"
	"cis/internal/platform/metrics"
	"cis/internal/platform/postgres"
	cisredis "cis/internal/platform/redis"
	"cis/pkg/platform/audit"
	"cis/pkg/platform/audit/publisher"
	kafkapublisher "cis/pkg/platform/audit/publishers/kafka"
	auditmemory "cis/pkg/platform/audit/store/memory"
	auditpostgres "cis/pkg/platform/audit/store/postgres"
	"cis/pkg/platform/middleware/admin"
	"cis/pkg/platform/middleware/auth"
	"cis/pkg/platform/middleware/metadata"
	"cis/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/identifier.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var checks []httpserver.HealthCheck

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if cfg.Database.Migrate {
			if err := pgstore.Migrate(ctx, db); err != nil {
				return err
			}
		}
		checks = append(checks, httpserver.HealthCheck{Name: "postgres", Check: db.PingContext})
	}

	redisClient, err := cisredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks = append(checks, httpserver.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	var locker ports.Locker
	switch cfg.Allocation.LockBackend {
	case config.LockBackendRedis:
		locker = keylock.NewRedis(redisClient.Client,
			keylock.WithTTL(cfg.Allocation.LockTTL),
			keylock.WithLogger(log),
		)
	default:
		locker = keylock.NewLocal()
	}

	auditStore, closeAudit, err := buildAuditStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	if h, ok := auditStore.(interface{ Health(context.Context) error }); ok {
		checks = append(checks, httpserver.HealthCheck{Name: "kafka", Check: h.Health})
	}
	auditPublisher := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(1024), publisher.WithLogger(log))
	defer auditPublisher.Close()

	svc, err := service.New(buildStores(db), locker,
		service.WithLogger(log),
		service.WithMetrics(idmetrics.New(reg)),
		service.WithAuditPublisher(auditPublisher),
		service.WithNamespaceRegistry(buildNamespaces(db)),
		service.WithMaxAttempts(cfg.Allocation.MaxAttempts),
	)
	if err != nil {
		return err
	}

	httpMetrics := metrics.New(reg)
	router := chi.NewRouter()
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(httpMetrics.Middleware)
	router.Get("/healthz", httpserver.Health(checks...))
	router.Handle("/metrics", metrics.Handler(reg))
	identifiers := handler.New(svc, log)
	router.Group(func(r chi.Router) {
		if cfg.Auth.SigningKey != "" {
			r.Use(auth.RequireAuth(auth.NewValidator(cfg.Auth.SigningKey, cfg.Auth.Issuer), log))
		}
		identifiers.Register(r)
	})
	if cfg.Auth.AdminToken != "" {
		router.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(cfg.Auth.AdminToken, log))
			identifiers.RegisterAdmin(r)
		})
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting cis", "addr", cfg.Server.Addr, "lock_backend", cfg.Allocation.LockBackend, "postgres", db != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server shut down")
		return nil
	})
	return g.Wait()
}

func buildStores(db *sql.DB) service.Stores {
	if db == nil {
		return service.Stores{
			SCTIDs:    memory.NewSCTIDStore(),
			SchemeIDs: memory.NewSchemeIDStore(),
			Counters:  memory.NewPartitionCounterStore(memory.DefaultCounters()...),
			Cursors:   memory.NewSchemeCursorStore(),
		}
	}
	return service.Stores{
		SCTIDs:    pgstore.NewSCTIDStore(db),
		SchemeIDs: pgstore.NewSchemeIDStore(db),
		Counters:  pgstore.NewPartitionCounterStore(db),
		Cursors:   pgstore.NewSchemeCursorStore(db),
	}
}

func buildNamespaces(db *sql.DB) ports.NamespaceRegistry {
	if db == nil {
		return memory.NewNamespaceRegistry()
	}
	return pgstore.NewNamespaceRegistry(db)
}

// buildAuditStore picks the audit sink: Kafka when brokers are configured,
// otherwise the database, otherwise memory.
func buildAuditStore(ctx context.Context, cfg config.Config, db *sql.DB, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafkapublisher.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, kafkapublisher.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		if err := p.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			p.Close()
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	if db != nil {
		return auditpostgres.New(db), func() {}, nil
	}
	return auditmemory.NewInMemoryStore(), func() {}, nil
}
