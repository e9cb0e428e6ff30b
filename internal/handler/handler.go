// Package handler exposes the composite service over HTTP.
package handler

import (
	"net/http"

	"github.com/xenking/product-composite/internal/domain/composite"
)

// maxBodySize caps request bodies accepted by the write endpoints.
const maxBodySize = 1 << 20

// Handler serves the /product-composite resource, delegating to the composite
// service.
type Handler struct {
	composites *composite.Service
}

// NewHandler constructs a Handler.
func NewHandler(composites *composite.Service) *Handler {
	return &Handler{composites: composites}
}

// Register mounts the handler routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /product-composite/{productId}", h.GetComposite)
	mux.HandleFunc("POST /product-composite", h.CreateComposite)
	mux.HandleFunc("DELETE /product-composite/{productId}", h.DeleteComposite)
}
