package wire

import (
	"github.com/go-faster/jx"

	"github.com/xenking/product-composite/internal/domain/composite"
)

// EncodeAggregate writes agg as a composite product document.
func EncodeAggregate(e *jx.Encoder, agg composite.Aggregate) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int(agg.ProductID)
	e.FieldStart("name")
	e.Str(agg.Name)
	e.FieldStart("weight")
	e.Int(agg.Weight)

	e.FieldStart("recommendations")
	e.ArrStart()
	for _, r := range agg.Recommendations {
		e.ObjStart()
		e.FieldStart("recommendationId")
		e.Int(r.RecommendationID)
		e.FieldStart("author")
		e.Str(r.Author)
		e.FieldStart("rate")
		e.Int(r.Rate)
		e.FieldStart("content")
		e.Str(r.Content)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("reviews")
	e.ArrStart()
	for _, r := range agg.Reviews {
		e.ObjStart()
		e.FieldStart("reviewId")
		e.Int(r.ReviewID)
		e.FieldStart("author")
		e.Str(r.Author)
		e.FieldStart("subject")
		e.Str(r.Subject)
		e.FieldStart("content")
		e.Str(r.Content)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("serviceAddresses")
	e.ObjStart()
	e.FieldStart("cmp")
	e.Str(agg.ServiceAddresses.Composite)
	e.FieldStart("pro")
	e.Str(agg.ServiceAddresses.Product)
	e.FieldStart("rev")
	e.Str(agg.ServiceAddresses.Review)
	e.FieldStart("rec")
	e.Str(agg.ServiceAddresses.Recommendation)
	e.ObjEnd()

	e.ObjEnd()
}

// DecodeAggregate reads a composite product document into agg. Service
// addresses are accepted but carry no meaning on input. A null document is an
// error.
func DecodeAggregate(d *jx.Decoder, agg *composite.Aggregate) error {
	return decodeDocument(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "productId":
			return field("productId", decodeInt(d, &agg.ProductID))
		case "name":
			return field("name", decodeStr(d, &agg.Name))
		case "weight":
			return field("weight", decodeInt(d, &agg.Weight))
		case "recommendations":
			return field("recommendations", decodeArr(d, func(d *jx.Decoder) error {
				var r composite.RecommendationSummary
				if err := decodeRecommendationSummary(d, &r); err != nil {
					return err
				}
				agg.Recommendations = append(agg.Recommendations, r)
				return nil
			}))
		case "reviews":
			return field("reviews", decodeArr(d, func(d *jx.Decoder) error {
				var r composite.ReviewSummary
				if err := decodeReviewSummary(d, &r); err != nil {
					return err
				}
				agg.Reviews = append(agg.Reviews, r)
				return nil
			}))
		case "serviceAddresses":
			return field("serviceAddresses", decodeServiceAddresses(d, &agg.ServiceAddresses))
		default:
			return d.Skip()
		}
	})
}

func decodeRecommendationSummary(d *jx.Decoder, r *composite.RecommendationSummary) error {
	return decodeObj(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "recommendationId":
			return field("recommendationId", decodeInt(d, &r.RecommendationID))
		case "author":
			return field("author", decodeStr(d, &r.Author))
		case "rate":
			return field("rate", decodeInt(d, &r.Rate))
		case "content":
			return field("content", decodeStr(d, &r.Content))
		default:
			return d.Skip()
		}
	})
}

func decodeReviewSummary(d *jx.Decoder, r *composite.ReviewSummary) error {
	return decodeObj(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "reviewId":
			return field("reviewId", decodeInt(d, &r.ReviewID))
		case "author":
			return field("author", decodeStr(d, &r.Author))
		case "subject":
			return field("subject", decodeStr(d, &r.Subject))
		case "content":
			return field("content", decodeStr(d, &r.Content))
		default:
			return d.Skip()
		}
	})
}

func decodeServiceAddresses(d *jx.Decoder, a *composite.ServiceAddresses) error {
	return decodeObj(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "cmp":
			return decodeStr(d, &a.Composite)
		case "pro":
			return decodeStr(d, &a.Product)
		case "rev":
			return decodeStr(d, &a.Review)
		case "rec":
			return decodeStr(d, &a.Recommendation)
		default:
			return d.Skip()
		}
	})
}
