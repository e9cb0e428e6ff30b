package inprocess

import (
	"context"
	"fmt"
	"sync"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/domain/review"
)

var _ review.Service = (*ReviewStore)(nil)

// ReviewStore is an in-memory review backend.
type ReviewStore struct {
	backend

	mu        sync.RWMutex
	byProduct map[int][]review.Review
}

// NewReviewStore returns an empty ReviewStore.
func NewReviewStore(opts Options) *ReviewStore {
	return &ReviewStore{
		backend:   backend{opts: opts},
		byProduct: make(map[int][]review.Review),
	}
}

// List returns the reviews of a product in insertion order.
func (s *ReviewStore) List(ctx context.Context, productID int) ([]review.Review, error) {
	path := fmt.Sprintf("/review?productId=%d", productID)
	if err := s.enter(ctx, path); err != nil {
		return nil, err
	}
	if productID < 1 {
		return nil, at(apierr.Invalid("Invalid productId: %d", productID), path)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byProduct[productID]
	out := make([]review.Review, len(stored))
	for i, r := range stored {
		r.ServiceAddress = s.opts.Address
		out[i] = r
	}
	return out, nil
}

// Create stores r. A review id may appear once per product.
func (s *ReviewStore) Create(ctx context.Context, r review.Review) (*review.Review, error) {
	const path = "/review"
	if err := s.enter(ctx, path); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byProduct[r.ProductID] {
		if existing.ReviewID == r.ReviewID {
			return nil, at(apierr.Invalid("Duplicate key, Product Id: %d, Review Id:%d",
				r.ProductID, r.ReviewID), path)
		}
	}
	r.ServiceAddress = ""
	s.byProduct[r.ProductID] = append(s.byProduct[r.ProductID], r)

	r.ServiceAddress = s.opts.Address
	return &r, nil
}

// Delete removes every review of the product.
func (s *ReviewStore) Delete(ctx context.Context, productID int) error {
	if err := s.enter(ctx, fmt.Sprintf("/review?productId=%d", productID)); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.byProduct, productID)
	s.mu.Unlock()
	return nil
}
