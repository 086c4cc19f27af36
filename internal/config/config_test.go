package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                       "",
		"REDIS_URL":                  "",
		"PRICING_TAX_RATE":           "",
		"CHECKOUT_REDIRECT_DELAY":    "",
		"OBS_ENABLE_TRACING":         "",
		"ORDER_API_BREAKER_OPEN_FOR": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, 0.08, cfg.Pricing.TaxRate)
	require.Equal(t, 50.0, cfg.Pricing.FreeShippingOver)
	require.Equal(t, 10.0, cfg.Pricing.FlatShipping)
	require.Equal(t, 2*time.Second, cfg.Checkout.RedirectDelay)
	require.Equal(t, "/", cfg.Checkout.RedirectPath)
	require.Equal(t, 30*time.Second, cfg.OrderAPI.BreakerOpenFor)
	require.False(t, cfg.Observability.EnableTracing)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                    ":9090",
		"CORS_ALLOWED_ORIGINS":    "http://a.test, http://b.test",
		"PRICING_TAX_RATE":        "0.1",
		"CHECKOUT_REDIRECT_DELAY": "500ms",
		"CHECKOUT_REDIRECT_PATH":  "/thanks",
		"OBS_ENABLE_PROMETHEUS":   "false",
		"SESSION_IDLE_TTL":        "5m",
		"NOTIFY_KAFKA_BROKERS":    "kafka:9092",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 0.1, cfg.Pricing.TaxRate)
	require.Equal(t, 500*time.Millisecond, cfg.Checkout.RedirectDelay)
	require.Equal(t, "/thanks", cfg.Checkout.RedirectPath)
	require.False(t, cfg.Observability.EnablePrometheus)
	require.Equal(t, 5*time.Minute, cfg.SessionIdleTTL)
	require.Equal(t, "kafka:9092", cfg.Kafka.Brokers)
	require.Equal(t, "storefront.notifications", cfg.Kafka.Topic)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"PRICING_TAX_RATE":               "eight",
		"ORDER_API_BREAKER_MIN_REQUESTS": "many",
		"CHECKOUT_REDIRECT_DELAY":        "soon",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "PRICING_TAX_RATE")
	require.Contains(t, err.Error(), "ORDER_API_BREAKER_MIN_REQUESTS")
	require.Contains(t, err.Error(), "CHECKOUT_REDIRECT_DELAY")
}

func TestLoadRequiresEndpointWhenTracing(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"OBS_ENABLE_TRACING": "true",
		"OBS_OTLP_ENDPOINT":  "",
	})
	require.Error(t, err)
}

func TestLoadRejectsRelativeRedirect(t *testing.T) {
	_, err := LoadForTests(map[string]string{"CHECKOUT_REDIRECT_PATH": "thanks"})
	require.Error(t, err)
}
