package integration

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/product-composite/internal/domain/recommendation"
	"github.com/xenking/product-composite/internal/wire"
)

var _ recommendation.Service = (*RecommendationClient)(nil)

// RecommendationClient talks to the recommendation backend.
type RecommendationClient struct {
	*client
}

// NewRecommendationClient creates a RecommendationClient.
func NewRecommendationClient(opts Options) (*RecommendationClient, error) {
	c, err := newClient("recommendation", opts)
	if err != nil {
		return nil, err
	}
	return &RecommendationClient{client: c}, nil
}

// List fetches GET /recommendation?productId={id}.
func (c *RecommendationClient) List(ctx context.Context, productID int) ([]recommendation.Recommendation, error) {
	var out []recommendation.Recommendation
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/recommendation?productId=%d", productID), nil, func(d *jx.Decoder) error {
		var err error
		out, err = wire.DecodeRecommendations(d)
		return err
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts r to /recommendation and returns the stored record.
func (c *RecommendationClient) Create(ctx context.Context, r recommendation.Recommendation) (*recommendation.Recommendation, error) {
	var created recommendation.Recommendation
	if err := c.do(ctx, http.MethodPost, "/recommendation", func(e *jx.Encoder) {
		wire.EncodeRecommendation(e, r)
	}, func(d *jx.Decoder) error {
		return wire.DecodeRecommendation(d, &created)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete issues DELETE /recommendation?productId={id}.
func (c *RecommendationClient) Delete(ctx context.Context, productID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/recommendation?productId=%d", productID), nil, nil)
}
