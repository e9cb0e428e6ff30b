package inprocess

import (
	"context"
	"fmt"
	"sync"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/domain/recommendation"
)

var _ recommendation.Service = (*RecommendationStore)(nil)

// RecommendationStore is an in-memory recommendation backend.
type RecommendationStore struct {
	backend

	mu        sync.RWMutex
	byProduct map[int][]recommendation.Recommendation
}

// NewRecommendationStore returns an empty RecommendationStore.
func NewRecommendationStore(opts Options) *RecommendationStore {
	return &RecommendationStore{
		backend:   backend{opts: opts},
		byProduct: make(map[int][]recommendation.Recommendation),
	}
}

// List returns the recommendations of a product in insertion order.
func (s *RecommendationStore) List(ctx context.Context, productID int) ([]recommendation.Recommendation, error) {
	path := fmt.Sprintf("/recommendation?productId=%d", productID)
	if err := s.enter(ctx, path); err != nil {
		return nil, err
	}
	if productID < 1 {
		return nil, at(apierr.Invalid("Invalid productId: %d", productID), path)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byProduct[productID]
	out := make([]recommendation.Recommendation, len(stored))
	for i, r := range stored {
		r.ServiceAddress = s.opts.Address
		out[i] = r
	}
	return out, nil
}

// Create stores r. A recommendation id may appear once per product.
func (s *RecommendationStore) Create(ctx context.Context, r recommendation.Recommendation) (*recommendation.Recommendation, error) {
	const path = "/recommendation"
	if err := s.enter(ctx, path); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byProduct[r.ProductID] {
		if existing.RecommendationID == r.RecommendationID {
			return nil, at(apierr.Invalid("Duplicate key, Product Id: %d, Recommendation Id:%d",
				r.ProductID, r.RecommendationID), path)
		}
	}
	r.ServiceAddress = ""
	s.byProduct[r.ProductID] = append(s.byProduct[r.ProductID], r)

	r.ServiceAddress = s.opts.Address
	return &r, nil
}

// Delete removes every recommendation of the product.
func (s *RecommendationStore) Delete(ctx context.Context, productID int) error {
	if err := s.enter(ctx, fmt.Sprintf("/recommendation?productId=%d", productID)); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.byProduct, productID)
	s.mu.Unlock()
	return nil
}
