package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	authhandler "supaboard/internal/auth/handler"
	authmw "supaboard/internal/auth/middleware"
	authservice "supaboard/internal/auth/service"
	"supaboard/internal/auth/sessioncookie"
	"supaboard/internal/auth/store/verifier"
	boardhandler "supaboard/internal/board/handler"
	boardservice "supaboard/internal/board/service"
	boardmemory "supaboard/internal/board/store/memory"
	boardpostgres "supaboard/internal/board/store/postgres"
	boardpostgrest "supaboard/internal/board/store/postgrest"
	"supaboard/internal/platform/config"
	"supaboard/internal/platform/httpserver"
	"supaboard/internal/platform/kafka"
	"supaboard/internal/platform/logger"
	"supaboard/internal/platform/metrics"
	"supaboard/internal/platform/postgres"
	"supaboard/internal/platform/redis"
	rlmw "supaboard/internal/ratelimit/middleware"
	rlmodels "supaboard/internal/ratelimit/models"
	"supaboard/internal/ratelimit/store/bucket"
	"supaboard/internal/supabase"
	httptransport "supaboard/internal/transport/http"
	audit "supaboard/pkg/platform/audit"
	"supaboard/pkg/platform/audit/publisher"
	kafkastore "supaboard/pkg/platform/audit/publishers/kafka"
	auditlog "supaboard/pkg/platform/audit/store/log"
	"supaboard/pkg/platform/middleware/metadata"
)

const (
	auditBuffer         = 256
	bucketSweepInterval = time.Minute
)

var _ authservice.Backend = (*supabase.Client)(nil)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
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
	m := metrics.New(reg)
	health := map[string]httptransport.Checker{}

	base, err := supabase.New(supabase.Config{
		URL:       cfg.Supabase.URL,
		AnonKey:   cfg.Supabase.AnonKey,
		FlowType:  supabase.FlowType(cfg.Supabase.FlowType),
		Schema:    cfg.Supabase.Schema,
		Timeout:   cfg.Supabase.Timeout,
		JWTSecret: cfg.Supabase.JWTSecret,
	}, supabase.WithObserver(m))
	if err != nil {
		return err
	}
	clients := supabase.NewClientCache(base)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	// memBuckets is the rate limit store without Redis and the fallback with it.
	memBuckets := bucket.New()
	var (
		verifiers authservice.VerifierStore = verifier.NewInMemory()
		buckets   rlmw.BucketStore          = memBuckets
	)
	if redisClient != nil {
		defer redisClient.Close()
		verifiers = verifier.NewRedis(redisClient.Client)
		buckets = bucket.NewRedis(redisClient.Client)
		health["redis"] = redisClient.Health
		log.Info("pkce verifiers and rate limits stored in redis")
	}
	limiter := rlmw.New(
		rlmw.NewLimiter(buckets,
			rlmw.WithFallback(memBuckets),
			rlmw.WithLimiterLogger(log),
			rlmw.WithMetrics(m),
		),
		log,
		rlmw.WithDisabled(!cfg.RateLimit.Enabled),
		rlmw.WithMiddlewareMetrics(m),
	)
	authLimit := rlmodels.Limit{Requests: cfg.RateLimit.AuthRequests, Window: cfg.RateLimit.AuthWindow}
	writeLimit := rlmodels.Limit{Requests: cfg.RateLimit.WriteRequests, Window: cfg.RateLimit.WriteWindow}

	auditPublisher, closeAudit, err := newAuditPublisher(ctx, cfg.Kafka, m, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	authSvc, err := authservice.New(
		func(ctx context.Context) authservice.Backend { return clients.Get(ctx) },
		verifiers,
		authservice.Config{
			EmailRedirectTo:  cfg.Auth.EmailRedirectTo,
			SignInRedirectTo: cfg.Auth.SignInRedirectTo,
			SignInPath:       cfg.Auth.SignInPath,
			FlowTTL:          cfg.Auth.PKCEFlowTTL,
			EmailFlowTTL:     cfg.Auth.EmailFlowTTL,
		},
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPublisher),
		authservice.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	cookieOpts := sessioncookie.DefaultOptions()
	cookieOpts.Secure = cfg.Cookie.Secure
	cookieOpts.Domain = cfg.Cookie.Domain
	cookies := sessioncookie.New(cookieOpts)
	session := authmw.NewSession(clients, authSvc, cookies, m, log)

	taskStore, closeStore, err := newTaskStore(ctx, cfg, clients, log)
	if err != nil {
		return err
	}
	defer closeStore()
	if pinger, ok := taskStore.(interface{ Ping(context.Context) error }); ok {
		health["postgres"] = pinger.Ping
	}
	boardSvc, err := boardservice.New(taskStore,
		boardservice.WithLogger(log),
		boardservice.WithAuditPublisher(auditPublisher),
		boardservice.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	trusted, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		RequestTimeout: cfg.Server.RequestTimeout,
		TrustedProxies: trusted,
		Session:        session.Handler,
		Health:         health,
		Handlers: []httptransport.Registrar{
			authhandler.New(authSvc, cookies, sessioncookie.NewFlowCookie(cookieOpts), log,
				authhandler.WithThrottle(limiter.RateLimit(rlmodels.ClassAuth, authLimit))),
			boardhandler.New(boardSvc, log,
				boardhandler.WithThrottle(limiter.RateLimit(rlmodels.ClassWrite, writeLimit))),
		},
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := memBuckets.StartCleanup(gctx, bucketSweepInterval); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting supaboard", "addr", cfg.Server.Addr, "board_store", cfg.Board.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// newAuditPublisher sends audit events to Kafka when brokers are configured
// and to the log otherwise.
func newAuditPublisher(ctx context.Context, cfg config.KafkaConfig, m *metrics.Metrics, log *slog.Logger) (*publisher.Publisher, func(), error) {
	var sink audit.Store = auditlog.New(log)
	var kc *kafka.Client
	if len(cfg.Brokers) > 0 {
		c, err := kafka.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		kc = c
		sink = kafkastore.New(kc, kc.Topic())
		log.Info("audit events published to kafka", "topic", kc.Topic())
	}
	pub := publisher.NewPublisher(sink,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
		publisher.WithFailureCounter(m),
		publisher.WithDrainTimeout(cfg.DrainTimeout),
	)
	return pub, func() {
		pub.Close()
		if kc != nil {
			kc.Close()
		}
	}, nil
}

// newTaskStore picks the task store named by BOARD_STORE.
func newTaskStore(ctx context.Context, cfg config.Config, clients *supabase.ClientCache, log *slog.Logger) (boardservice.Store, func(), error) {
	noop := func() {}
	switch strings.ToLower(cfg.Board.Store) {
	case config.BoardStorePostgres:
		pool, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if pool == nil {
			return nil, nil, errors.New("BOARD_STORE=postgres requires DATABASE_URL")
		}
		store, err := boardpostgres.New(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("tasks stored in postgres")
		return store, pool.Close, nil
	case config.BoardStoreMemory:
		log.Warn("tasks stored in memory; data is lost on restart")
		return boardmemory.New(), noop, nil
	default:
		store, err := boardpostgrest.New(func(ctx context.Context) *supabase.Client { return clients.Get(ctx) })
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	}
}
