package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/product-composite/internal/domain/product"
	"github.com/xenking/product-composite/internal/domain/recommendation"
	"github.com/xenking/product-composite/internal/domain/review"
)

// EncodeProduct writes p as a backend product document.
func EncodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("weight")
	e.Int(p.Weight)
	if p.ServiceAddress != "" {
		e.FieldStart("serviceAddress")
		e.Str(p.ServiceAddress)
	}
	e.ObjEnd()
}

// DecodeProduct reads a backend product document into p. A null document is
// an error.
func DecodeProduct(d *jx.Decoder, p *product.Product) error {
	return decodeDocument(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "productId":
			return field("productId", decodeInt(d, &p.ID))
		case "name":
			return field("name", decodeStr(d, &p.Name))
		case "weight":
			return field("weight", decodeInt(d, &p.Weight))
		case "serviceAddress":
			return field("serviceAddress", decodeStr(d, &p.ServiceAddress))
		default:
			return d.Skip()
		}
	})
}

// EncodeRecommendation writes r as a backend recommendation document.
func EncodeRecommendation(e *jx.Encoder, r recommendation.Recommendation) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int(r.ProductID)
	e.FieldStart("recommendationId")
	e.Int(r.RecommendationID)
	e.FieldStart("author")
	e.Str(r.Author)
	e.FieldStart("rate")
	e.Int(r.Rate)
	e.FieldStart("content")
	e.Str(r.Content)
	if r.ServiceAddress != "" {
		e.FieldStart("serviceAddress")
		e.Str(r.ServiceAddress)
	}
	e.ObjEnd()
}

// DecodeRecommendation reads a backend recommendation document into r.
func DecodeRecommendation(d *jx.Decoder, r *recommendation.Recommendation) error {
	return decodeObj(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "productId":
			return field("productId", decodeInt(d, &r.ProductID))
		case "recommendationId":
			return field("recommendationId", decodeInt(d, &r.RecommendationID))
		case "author":
			return field("author", decodeStr(d, &r.Author))
		case "rate":
			return field("rate", decodeInt(d, &r.Rate))
		case "content":
			return field("content", decodeStr(d, &r.Content))
		case "serviceAddress":
			return field("serviceAddress", decodeStr(d, &r.ServiceAddress))
		default:
			return d.Skip()
		}
	})
}

// DecodeRecommendations reads a JSON array of recommendations. A null array
// yields an empty, non-nil slice.
func DecodeRecommendations(d *jx.Decoder) ([]recommendation.Recommendation, error) {
	out := []recommendation.Recommendation{}
	if err := decodeArr(d, func(d *jx.Decoder) error {
		var r recommendation.Recommendation
		if err := DecodeRecommendation(d, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode recommendations")
	}
	return out, nil
}

// EncodeReview writes r as a backend review document.
func EncodeReview(e *jx.Encoder, r review.Review) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int(r.ProductID)
	e.FieldStart("reviewId")
	e.Int(r.ReviewID)
	e.FieldStart("author")
	e.Str(r.Author)
	e.FieldStart("subject")
	e.Str(r.Subject)
	e.FieldStart("content")
	e.Str(r.Content)
	if r.ServiceAddress != "" {
		e.FieldStart("serviceAddress")
		e.Str(r.ServiceAddress)
	}
	e.ObjEnd()
}

// DecodeReview reads a backend review document into r.
func DecodeReview(d *jx.Decoder, r *review.Review) error {
	return decodeObj(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "productId":
			return field("productId", decodeInt(d, &r.ProductID))
		case "reviewId":
			return field("reviewId", decodeInt(d, &r.ReviewID))
		case "author":
			return field("author", decodeStr(d, &r.Author))
		case "subject":
			return field("subject", decodeStr(d, &r.Subject))
		case "content":
			return field("content", decodeStr(d, &r.Content))
		case "serviceAddress":
			return field("serviceAddress", decodeStr(d, &r.ServiceAddress))
		default:
			return d.Skip()
		}
	})
}

// DecodeReviews reads a JSON array of reviews. A null array yields an empty,
// non-nil slice.
func DecodeReviews(d *jx.Decoder) ([]review.Review, error) {
	out := []review.Review{}
	if err := decodeArr(d, func(d *jx.Decoder) error {
		var r review.Review
		if err := DecodeReview(d, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode reviews")
	}
	return out, nil
}
