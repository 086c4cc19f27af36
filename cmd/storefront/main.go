package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/health"
	"github.com/noah-isme/toko-storefront/internal/httpapi"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/orderapi"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/ratelimit"
	"github.com/noah-isme/toko-storefront/internal/resilience"
	"github.com/noah-isme/toko-storefront/internal/session"
)

const serviceName = "toko-storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Observability.LogFormat, cfg.Observability.LogLevel).
		With().Str("env", cfg.AppEnv).Str("service", serviceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		httpMetrics *obs.HTTPMetrics
		gatherer    prometheus.Gatherer
	)
	obs.MustRegisterDomainMetrics(cfg.Observability.MetricsNamespace, nil)
	resilience.MustRegisterMetrics(nil)
	if cfg.Observability.EnablePrometheus {
		buckets := obs.ParseBucketsCSV(cfg.Observability.MetricsBuckets)
		httpMetrics = obs.NewHTTPMetrics(cfg.Observability.MetricsNamespace, buckets, nil)
		gatherer = prometheus.DefaultGatherer
	}

	tracingService := ""
	if cfg.Observability.EnableTracing {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      cfg.Observability.OTLPEndpoint,
			Exporter:      "otlp",
			SamplingRatio: cfg.Observability.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			tracingService = serviceName
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	notifiers := []events.Notifier{notify.LogNotifier{Logger: logger}}
	var (
		redisClient  *redis.Client
		limiterStore limiter.Store
	)
	if cfg.RedisURL != "" {
		redisClient = mustRedis(ctx, cfg, logger)
		defer func() { _ = redisClient.Close() }()
		notifiers = append(notifiers, notify.RedisPublisher{Client: redisClient, Channel: cfg.NotifyChannel})
		limiterStore, err = ratelimit.NewRedisStore(redisClient)
		if err != nil {
			logger.Fatal().Err(err).Msg("create limiter store")
		}
	}
	if cfg.Kafka.Brokers != "" {
		writer := notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer func() { _ = writer.Close() }()
		notifiers = append(notifiers, notify.KafkaPublisher{Writer: writer})
	}
	submitLimiter, err := ratelimit.New(cfg.Checkout.SubmitRate, limiterStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure submit rate limit")
	}

	breaker := resilience.NewBreaker(
		cfg.OrderAPI.BreakerMinRequests,
		cfg.OrderAPI.BreakerFailureRatio,
		cfg.OrderAPI.BreakerOpenFor,
	).WithTarget("order_api").WithLogger(logger)

	sessions := session.NewManager(session.Config{
		Catalog: catalog.Default(),
		Rules: pricing.Rules{
			TaxRate:          cfg.Pricing.TaxRate,
			FreeShippingOver: cfg.Pricing.FreeShippingOver,
			FlatShipping:     cfg.Pricing.FlatShipping,
		},
		Validator:     checkout.NewValidator(),
		OrderAPI:      orderapi.Guarded{API: orderapi.Simulated{Latency: cfg.OrderAPI.Latency}, Breaker: breaker},
		Notifiers:     notifiers,
		RedirectDelay: cfg.Checkout.RedirectDelay,
		RedirectPath:  cfg.Checkout.RedirectPath,
		IdleTTL:       cfg.SessionIdleTTL,
		Logger:        &logger,
	})
	defer sessions.Close()
	go sessions.Run(ctx, time.Minute)

	router := httpapi.NewRouter(httpapi.Config{
		Sessions:       sessions,
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		SubmitLimiter:  submitLimiter,
		Health: health.Handler{
			Checker:      health.RedisChecker{Client: redisClientOrNil(redisClient)},
			RedisTimeout: 300 * time.Millisecond,
		},
		HTTPMetrics:    httpMetrics,
		Gatherer:       gatherer,
		TracingService: tracingService,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func mustRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}

// redisClientOrNil avoids handing a typed nil to an interface field.
func redisClientOrNil(c *redis.Client) redis.UniversalClient {
	if c == nil {
		return nil
	}
	return c
}
