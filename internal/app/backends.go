package app

import (
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/product-composite/internal/domain/product"
	"github.com/xenking/product-composite/internal/domain/recommendation"
	"github.com/xenking/product-composite/internal/domain/review"
	"github.com/xenking/product-composite/internal/inprocess"
	"github.com/xenking/product-composite/internal/integration"
	"github.com/xenking/product-composite/pkg/health"
)

// Telemetry provides the otel providers. *app.Telemetry of go-faster/sdk
// implements it.
type Telemetry interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// backends holds the three capability implementations injected into the
// composite service.
type backends struct {
	products        product.Service
	recommendations recommendation.Service
	reviews         review.Service
}

// newBackends builds the backends selected by cfg.Backends.Mode and registers
// their readiness checks. The product backend is required for readiness;
// recommendation and review only degrade it.
func newBackends(cfg *Config, m Telemetry, hs *health.Health) (backends, error) {
	if cfg.Backends.Mode == ModeInProcess {
		opts := inprocess.Options{Address: cfg.ServiceAddress}
		return backends{
			products:        inprocess.NewProductStore(opts),
			recommendations: inprocess.NewRecommendationStore(opts),
			reviews:         inprocess.NewReviewStore(opts),
		}, nil
	}

	hc := integration.NewHTTPClient(
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)
	options := func(b BackendConfig) integration.Options {
		return integration.Options{
			BaseURL:    b.URL,
			Timeout:    b.Timeout,
			HealthPath: b.HealthPath,
			HTTPClient: hc,
		}
	}

	products, err := integration.NewProductClient(options(cfg.Backends.Product))
	if err != nil {
		return backends{}, err
	}
	recommendations, err := integration.NewRecommendationClient(options(cfg.Backends.Recommendation))
	if err != nil {
		return backends{}, err
	}
	reviews, err := integration.NewReviewClient(options(cfg.Backends.Review))
	if err != nil {
		return backends{}, err
	}

	for _, c := range []struct {
		name     string
		pinger   health.Pinger
		optional bool
	}{
		{"product", products, false},
		{"recommendation", recommendations, true},
		{"review", reviews, true},
	} {
		hs.Add(health.Check{
			Name:     c.name,
			Probe:    health.Readiness,
			Timeout:  healthTimeout(cfg),
			Func:     health.PingCheck(c.name, c.pinger),
			Optional: c.optional,
		})
	}

	return backends{
		products:        products,
		recommendations: recommendations,
		reviews:         reviews,
	}, nil
}

func healthTimeout(cfg *Config) time.Duration {
	if cfg.Health.Timeout > 0 {
		return cfg.Health.Timeout
	}
	return 2 * time.Second
}
