package inprocess

import (
	"context"
	"fmt"
	"sync"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/domain/product"
)

var _ product.Service = (*ProductStore)(nil)

// ProductStore is an in-memory product backend.
type ProductStore struct {
	backend

	mu   sync.RWMutex
	byID map[int]product.Product
}

// NewProductStore returns an empty ProductStore.
func NewProductStore(opts Options) *ProductStore {
	return &ProductStore{
		backend: backend{opts: opts},
		byID:    make(map[int]product.Product),
	}
}

// Get returns the product with the given id.
func (s *ProductStore) Get(ctx context.Context, id int) (*product.Product, error) {
	path := fmt.Sprintf("/product/%d", id)
	if err := s.enter(ctx, path); err != nil {
		return nil, err
	}
	if id < 1 {
		return nil, at(apierr.Invalid("Invalid productId: %d", id), path)
	}

	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, at(apierr.Missing("No product found for productId: %d", id), path)
	}

	p.ServiceAddress = s.opts.Address
	return &p, nil
}

// Create stores p. Storing an id twice is rejected as invalid input.
func (s *ProductStore) Create(ctx context.Context, p product.Product) (*product.Product, error) {
	const path = "/product"
	if err := s.enter(ctx, path); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; ok {
		return nil, at(apierr.Invalid("Duplicate key, Product Id: %d", p.ID), path)
	}
	p.ServiceAddress = ""
	s.byID[p.ID] = p

	p.ServiceAddress = s.opts.Address
	return &p, nil
}

// Delete removes the product if present.
func (s *ProductStore) Delete(ctx context.Context, id int) error {
	if err := s.enter(ctx, fmt.Sprintf("/product/%d", id)); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
	return nil
}
