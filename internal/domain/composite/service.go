// Package composite assembles the composite view of a product from the
// product, recommendation and review backends.
//
// The product backend is load-bearing: its failures abort the operation and
// reach the caller unchanged. On the read path, recommendation and review
// failures are absorbed into empty sequences so that a sick backend never
// makes product information unavailable. On the write path every failure is
// surfaced.
package composite

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/domain/product"
	"github.com/xenking/product-composite/internal/domain/recommendation"
	"github.com/xenking/product-composite/internal/domain/review"
)

const instrumentationName = "github.com/xenking/product-composite/internal/domain/composite"

// Config holds non-dependency settings for the Service.
type Config struct {
	// ServiceAddress is the host:port of this instance, reported in every
	// Aggregate.
	ServiceAddress string
	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Service orchestrates composite operations across the three backends. It
// holds no per-request state and is safe for concurrent use.
type Service struct {
	products        product.Service
	recommendations recommendation.Service
	reviews         review.Service

	self     string
	tracer   trace.Tracer
	degraded metric.Int64Counter
}

// NewService creates a Service over the given backends.
func NewService(
	cfg Config,
	products product.Service,
	recommendations recommendation.Service,
	reviews review.Service,
) (*Service, error) {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	degraded, err := mp.Meter(instrumentationName).Int64Counter("composite.degraded",
		metric.WithDescription("Backend failures absorbed on the read path"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create degraded counter")
	}

	return &Service{
		products:        products,
		recommendations: recommendations,
		reviews:         reviews,
		self:            cfg.ServiceAddress,
		tracer:          tp.Tracer(instrumentationName),
		degraded:        degraded,
	}, nil
}

// Get fetches the product, its recommendations and its reviews concurrently
// and merges them into an Aggregate.
//
// A product failure is returned as-is and cancels the sibling calls.
// Recommendation and review failures yield empty sequences.
func (s *Service) Get(ctx context.Context, productID int) (_ *Aggregate, rerr error) {
	if productID < 1 {
		return nil, apierr.Invalid("Invalid productId: %d", productID)
	}

	ctx, span := s.tracer.Start(ctx, "composite.Get",
		trace.WithAttributes(attribute.Int("product.id", productID)),
	)
	defer func() { finish(span, rerr) }()

	var (
		p    *product.Product
		recs []recommendation.Recommendation
		revs []review.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.products.Get(gctx, productID)
		return err
	})
	g.Go(func() error {
		recs = tolerate(gctx, s, "recommendation", func(ctx context.Context) ([]recommendation.Recommendation, error) {
			return s.recommendations.List(ctx, productID)
		})
		return nil
	})
	g.Go(func() error {
		revs = tolerate(gctx, s, "review", func(ctx context.Context) ([]review.Review, error) {
			return s.reviews.List(ctx, productID)
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := BuildAggregate(s.self, *p, recs, revs)
	return &agg, nil
}

// tolerate runs fetch and substitutes an empty sequence on failure.
func tolerate[T any](ctx context.Context, s *Service, backend string, fetch func(context.Context) ([]T, error)) []T {
	items, err := fetch(ctx)
	if err == nil {
		return items
	}

	lg := zctx.From(ctx)
	if ctx.Err() != nil {
		// Abandoned because the product call already failed.
		lg.Debug("Backend call abandoned", zap.String("backend", backend), zap.Error(err))
		return []T{}
	}

	lg.Warn("Backend call failed, using empty result",
		zap.String("backend", backend),
		zap.Error(err),
	)
	s.degraded.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
	return []T{}
}

// Create stores the product first and then its recommendations and reviews.
//
// A product failure aborts the operation. The recommendation and review
// branches run concurrently and both run to completion; the first failure
// among them is returned.
func (s *Service) Create(ctx context.Context, in Aggregate) (rerr error) {
	if in.ProductID < 1 {
		return apierr.Invalid("Invalid productId: %d", in.ProductID)
	}

	ctx, span := s.tracer.Start(ctx, "composite.Create",
		trace.WithAttributes(
			attribute.Int("product.id", in.ProductID),
			attribute.Int("recommendations", len(in.Recommendations)),
			attribute.Int("reviews", len(in.Reviews)),
		),
	)
	defer func() { finish(span, rerr) }()

	lg := zctx.From(ctx).With(zap.Int("product_id", in.ProductID))

	if _, err := s.products.Create(ctx, product.Product{
		ID:     in.ProductID,
		Name:   in.Name,
		Weight: in.Weight,
	}); err != nil {
		lg.Warn("Create product failed", zap.Error(err))
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		for _, r := range in.Recommendations {
			if _, err := s.recommendations.Create(ctx, recommendation.Recommendation{
				ProductID:        in.ProductID,
				RecommendationID: r.RecommendationID,
				Author:           r.Author,
				Rate:             r.Rate,
				Content:          r.Content,
			}); err != nil {
				lg.Warn("Create recommendation failed",
					zap.Int("recommendation_id", r.RecommendationID),
					zap.Error(err),
				)
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, r := range in.Reviews {
			if _, err := s.reviews.Create(ctx, review.Review{
				ProductID: in.ProductID,
				ReviewID:  r.ReviewID,
				Author:    r.Author,
				Subject:   r.Subject,
				Content:   r.Content,
			}); err != nil {
				lg.Warn("Create review failed",
					zap.Int("review_id", r.ReviewID),
					zap.Error(err),
				)
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	lg.Debug("Composite created",
		zap.Int("recommendations", len(in.Recommendations)),
		zap.Int("reviews", len(in.Reviews)),
	)
	return nil
}

// Delete removes the product with its recommendations and reviews. The three
// deletions run concurrently; a backend reporting the record as missing
// counts as success.
func (s *Service) Delete(ctx context.Context, productID int) (rerr error) {
	if productID < 1 {
		return apierr.Invalid("Invalid productId: %d", productID)
	}

	ctx, span := s.tracer.Start(ctx, "composite.Delete",
		trace.WithAttributes(attribute.Int("product.id", productID)),
	)
	defer func() { finish(span, rerr) }()

	var g errgroup.Group
	g.Go(func() error {
		return ignoreMissing(ctx, "product", s.products.Delete(ctx, productID))
	})
	g.Go(func() error {
		return ignoreMissing(ctx, "recommendation", s.recommendations.Delete(ctx, productID))
	})
	g.Go(func() error {
		return ignoreMissing(ctx, "review", s.reviews.Delete(ctx, productID))
	})
	return g.Wait()
}

func ignoreMissing(ctx context.Context, backend string, err error) error {
	if err == nil {
		return nil
	}
	lg := zctx.From(ctx)
	if apierr.Is(err, apierr.NotFound) {
		lg.Debug("Nothing to delete", zap.String("backend", backend))
		return nil
	}
	lg.Warn("Delete failed", zap.String("backend", backend), zap.Error(err))
	return err
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
