package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/product-composite/internal/domain/composite"
	"github.com/xenking/product-composite/internal/handler"
	"github.com/xenking/product-composite/pkg/health"
	"github.com/xenking/product-composite/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("service_address", cfg.ServiceAddress),
		zap.String("backends", cfg.Backends.Mode),
	)

	healthSvc := health.New()
	healthSvc.Add(health.Check{
		Name:    "goroutines",
		Probe:   health.Liveness,
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(10000),
	})
	healthSvc.Add(health.Check{
		Name:    "gc_pause",
		Probe:   health.Liveness,
		Timeout: time.Second,
		Func:    health.GCMaxPauseCheck(time.Second, 16),
	})

	b, err := newBackends(cfg, m, healthSvc)
	if err != nil {
		return errors.Wrap(err, "create backends")
	}

	svc, err := composite.NewService(composite.Config{
		ServiceAddress: cfg.ServiceAddress,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	}, b.products, b.recommendations, b.reviews)
	if err != nil {
		return errors.Wrap(err, "create composite service")
	}

	healthSvc.Start(ctx, cfg.Health.Interval)
	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, m, healthSvc, svc),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer healthSvc.Stop()
		return shutdown(lg, server, healthSvc, cfg.Graceful)
	})
	return g.Wait()
}

// newRouter mounts the probes and the composite API behind the middleware
// chain. The first middleware is the outermost.
func newRouter(ctx context.Context, cfg *Config, m Telemetry, hs *health.Health, svc *composite.Service) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", hs.LiveEndpoint)
	mux.HandleFunc("GET /readyz", hs.ReadyEndpoint)
	handler.NewHandler(svc).Register(mux)

	return httpmiddleware.Wrap(mux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Recovery(),
		httpmiddleware.Instrument("product-composite", m),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.LogRequests(),
	)
}

// shutdown flips readiness off, waits for load balancers to notice and then
// drains in-flight requests.
func shutdown(lg *zap.Logger, server *http.Server, hs *health.Health, cfg GracefulConfig) error {
	hs.SetReady(false)
	if cfg.ReadinessDelay > 0 {
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.ReadinessDelay))
		time.Sleep(cfg.ReadinessDelay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	lg.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
