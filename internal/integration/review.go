package integration

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/product-composite/internal/domain/review"
	"github.com/xenking/product-composite/internal/wire"
)

var _ review.Service = (*ReviewClient)(nil)

// ReviewClient talks to the review backend.
type ReviewClient struct {
	*client
}

// NewReviewClient creates a ReviewClient.
func NewReviewClient(opts Options) (*ReviewClient, error) {
	c, err := newClient("review", opts)
	if err != nil {
		return nil, err
	}
	return &ReviewClient{client: c}, nil
}

// List fetches GET /review?productId={id}.
func (c *ReviewClient) List(ctx context.Context, productID int) ([]review.Review, error) {
	var out []review.Review
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/review?productId=%d", productID), nil, func(d *jx.Decoder) error {
		var err error
		out, err = wire.DecodeReviews(d)
		return err
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts r to /review and returns the stored record.
func (c *ReviewClient) Create(ctx context.Context, r review.Review) (*review.Review, error) {
	var created review.Review
	if err := c.do(ctx, http.MethodPost, "/review", func(e *jx.Encoder) {
		wire.EncodeReview(e, r)
	}, func(d *jx.Decoder) error {
		return wire.DecodeReview(d, &created)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete issues DELETE /review?productId={id}.
func (c *ReviewClient) Delete(ctx context.Context, productID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/review?productId=%d", productID), nil, nil)
}
