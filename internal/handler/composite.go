package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/product-composite/internal/domain/composite"
	"github.com/xenking/product-composite/internal/wire"
)

// GetComposite returns the composite view of one product.
func (h *Handler) GetComposite(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathProductID(w, r)
	if !ok {
		return
	}

	agg, err := h.composites.Get(r.Context(), productID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, wire.Encode(func(e *jx.Encoder) {
		wire.EncodeAggregate(e, *agg)
	}))
}

// CreateComposite stores a product together with its recommendations and
// reviews.
func (h *Handler) CreateComposite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Unable to read request body.")
		return
	}

	var agg composite.Aggregate
	if err := wire.Decode(body, func(d *jx.Decoder) error {
		return wire.DecodeAggregate(d, &agg)
	}); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request body.")
		return
	}

	if err := h.composites.Create(r.Context(), agg); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteComposite removes a product together with its recommendations and
// reviews. Deleting a missing product succeeds.
func (h *Handler) DeleteComposite(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathProductID(w, r)
	if !ok {
		return
	}

	if err := h.composites.Delete(r.Context(), productID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func pathProductID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("productId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Type mismatch.")
		return 0, false
	}
	return id, true
}
