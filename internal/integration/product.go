package integration

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/product-composite/internal/domain/product"
	"github.com/xenking/product-composite/internal/wire"
)

var _ product.Service = (*ProductClient)(nil)

// ProductClient talks to the product backend.
type ProductClient struct {
	*client
}

// NewProductClient creates a ProductClient.
func NewProductClient(opts Options) (*ProductClient, error) {
	c, err := newClient("product", opts)
	if err != nil {
		return nil, err
	}
	return &ProductClient{client: c}, nil
}

// Get fetches GET /product/{id}.
func (c *ProductClient) Get(ctx context.Context, id int) (*product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/product/%d", id), nil, func(d *jx.Decoder) error {
		return wire.DecodeProduct(d, &p)
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create posts p to /product and returns the stored record.
func (c *ProductClient) Create(ctx context.Context, p product.Product) (*product.Product, error) {
	var created product.Product
	if err := c.do(ctx, http.MethodPost, "/product", func(e *jx.Encoder) {
		wire.EncodeProduct(e, p)
	}, func(d *jx.Decoder) error {
		return wire.DecodeProduct(d, &created)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete issues DELETE /product/{id}.
func (c *ProductClient) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/product/%d", id), nil, nil)
}
