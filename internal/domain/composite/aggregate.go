package composite

import (
	"github.com/xenking/product-composite/internal/domain/product"
	"github.com/xenking/product-composite/internal/domain/recommendation"
	"github.com/xenking/product-composite/internal/domain/review"
)

// Aggregate is the composite view of one product with its recommendations
// and reviews.
type Aggregate struct {
	ProductID        int
	Name             string
	Weight           int
	Recommendations  []RecommendationSummary
	Reviews          []ReviewSummary
	ServiceAddresses ServiceAddresses
}

// RecommendationSummary is a recommendation as it appears in an Aggregate.
type RecommendationSummary struct {
	RecommendationID int
	Author           string
	Rate             int
	Content          string
}

// ReviewSummary is a review as it appears in an Aggregate.
type ReviewSummary struct {
	ReviewID int
	Author   string
	Subject  string
	Content  string
}

// ServiceAddresses records which instances contributed to an Aggregate.
type ServiceAddresses struct {
	Composite      string
	Product        string
	Recommendation string
	Review         string
}

// BuildAggregate merges a product with its recommendations and reviews.
// Sequence order is preserved. The recommendation and review addresses are
// taken from the first record of each sequence.
func BuildAggregate(
	self string,
	p product.Product,
	recs []recommendation.Recommendation,
	revs []review.Review,
) Aggregate {
	agg := Aggregate{
		ProductID:       p.ID,
		Name:            p.Name,
		Weight:          p.Weight,
		Recommendations: make([]RecommendationSummary, len(recs)),
		Reviews:         make([]ReviewSummary, len(revs)),
		ServiceAddresses: ServiceAddresses{
			Composite: self,
			Product:   p.ServiceAddress,
		},
	}

	for i, r := range recs {
		agg.Recommendations[i] = RecommendationSummary{
			RecommendationID: r.RecommendationID,
			Author:           r.Author,
			Rate:             r.Rate,
			Content:          r.Content,
		}
	}
	if len(recs) > 0 {
		agg.ServiceAddresses.Recommendation = recs[0].ServiceAddress
	}

	for i, r := range revs {
		agg.Reviews[i] = ReviewSummary{
			ReviewID: r.ReviewID,
			Author:   r.Author,
			Subject:  r.Subject,
			Content:  r.Content,
		}
	}
	if len(revs) > 0 {
		agg.ServiceAddresses.Review = revs[0].ServiceAddress
	}

	return agg
}
