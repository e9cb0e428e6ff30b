package product

import "context"

// Product is the core record served by the product backend.
type Product struct {
	ID     int
	Name   string
	Weight int
	// ServiceAddress is the host:port of the backend instance that served
	// the record.
	ServiceAddress string
}

// Service is the capability set of a product backend.
type Service interface {
	Get(ctx context.Context, id int) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	// Delete is idempotent: deleting a missing product succeeds.
	Delete(ctx context.Context, id int) error
}
