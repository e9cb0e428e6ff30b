package recommendation

import "context"

// Recommendation is a product recommendation served by the recommendation
// backend. A product has zero or more of them.
type Recommendation struct {
	ProductID        int
	RecommendationID int
	Author           string
	Rate             int
	Content          string
	ServiceAddress   string
}

// Service is the capability set of a recommendation backend.
type Service interface {
	List(ctx context.Context, productID int) ([]Recommendation, error)
	Create(ctx context.Context, r Recommendation) (*Recommendation, error)
	// Delete removes every recommendation of the product. It is idempotent.
	Delete(ctx context.Context, productID int) error
}
