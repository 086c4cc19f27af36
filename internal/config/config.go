package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	Pricing            PricingConfig
	Checkout           CheckoutConfig
	OrderAPI           OrderAPIConfig
	NotifyChannel      string
	Kafka              KafkaConfig
	SessionIdleTTL     time.Duration
	Observability      ObservabilityConfig
}

// KafkaConfig enables the Kafka notification publisher when Brokers is set.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// PricingConfig parameterises order totals.
type PricingConfig struct {
	TaxRate          float64
	FreeShippingOver float64
	FlatShipping     float64
}

// CheckoutConfig controls submission behaviour.
type CheckoutConfig struct {
	RedirectDelay time.Duration
	RedirectPath  string
	// SubmitRate is a ulule/limiter formatted rate, e.g. "10-M".
	SubmitRate string
}

// OrderAPIConfig configures the order service client and its breaker.
type OrderAPIConfig struct {
	Latency             time.Duration
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenFor      time.Duration
}

// ObservabilityConfig groups logging, metrics and tracing switches.
type ObservabilityConfig struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsBuckets   string
	EnablePrometheus bool
	EnableTracing    bool
	OTLPEndpoint     string
	SamplingRatio    float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	p := parser{k: k}
	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		Pricing: PricingConfig{
			TaxRate:          p.floatValue("PRICING_TAX_RATE", 0.08),
			FreeShippingOver: p.floatValue("PRICING_FREE_SHIPPING_OVER", 50),
			FlatShipping:     p.floatValue("PRICING_FLAT_SHIPPING", 10),
		},
		Checkout: CheckoutConfig{
			RedirectDelay: p.duration("CHECKOUT_REDIRECT_DELAY", 2*time.Second),
			RedirectPath:  valueOrDefault(k.String("CHECKOUT_REDIRECT_PATH"), "/"),
			SubmitRate:    valueOrDefault(k.String("CHECKOUT_SUBMIT_RATE"), "10-M"),
		},
		OrderAPI: OrderAPIConfig{
			Latency:             p.duration("ORDER_API_LATENCY", 300*time.Millisecond),
			BreakerMinRequests:  p.intValue("ORDER_API_BREAKER_MIN_REQUESTS", 5),
			BreakerFailureRatio: p.floatValue("ORDER_API_BREAKER_FAILURE_RATIO", 0.5),
			BreakerOpenFor:      p.duration("ORDER_API_BREAKER_OPEN_FOR", 30*time.Second),
		},
		NotifyChannel: valueOrDefault(k.String("NOTIFY_CHANNEL"), "storefront:notifications"),
		Kafka: KafkaConfig{
			Brokers: strings.TrimSpace(k.String("NOTIFY_KAFKA_BROKERS")),
			Topic:   valueOrDefault(k.String("NOTIFY_KAFKA_TOPIC"), "storefront.notifications"),
		},
		SessionIdleTTL: p.duration("SESSION_IDLE_TTL", 30*time.Minute),
		Observability: ObservabilityConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "storefront"),
			MetricsBuckets:   strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
			EnablePrometheus: p.boolValue("OBS_ENABLE_PROMETHEUS", true),
			EnableTracing:    p.boolValue("OBS_ENABLE_TRACING", false),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    p.floatValue("OBS_TRACING_SAMPLING_RATIO", 1),
		},
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}

	if cfg.Pricing.TaxRate < 0 || cfg.Pricing.FreeShippingOver < 0 || cfg.Pricing.FlatShipping < 0 {
		return nil, errors.New("pricing values must be non-negative")
	}
	if !strings.HasPrefix(cfg.Checkout.RedirectPath, "/") {
		return nil, fmt.Errorf("CHECKOUT_REDIRECT_PATH must be an absolute path, got %q", cfg.Checkout.RedirectPath)
	}
	if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint == "" {
		return nil, errors.New("OBS_OTLP_ENDPOINT is required when tracing is enabled")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// parser collects every malformed value so a single Load reports them all.
type parser struct {
	k    *koanf.Koanf
	errs []error
}

func (p *parser) raw(key string) string {
	return strings.TrimSpace(p.k.String(key))
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := p.raw(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return fallback
	}
	return d
}

func (p *parser) floatValue(key string, fallback float64) float64 {
	v := p.raw(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return fallback
	}
	return f
}

func (p *parser) intValue(key string, fallback int) int {
	v := p.raw(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func (p *parser) boolValue(key string, fallback bool) bool {
	switch strings.ToLower(p.raw(key)) {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, p.raw(key)))
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
