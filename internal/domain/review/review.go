package review

import "context"

// Review is a product review served by the review backend.
type Review struct {
	ProductID      int
	ReviewID       int
	Author         string
	Subject        string
	Content        string
	ServiceAddress string
}

// Service is the capability set of a review backend.
type Service interface {
	List(ctx context.Context, productID int) ([]Review, error)
	Create(ctx context.Context, r Review) (*Review, error)
	// Delete removes every review of the product. It is idempotent.
	Delete(ctx context.Context, productID int) error
}
