package catalog

import (
	"context"
	"fmt"

	"github.com/roach88/storefront/internal/model"
)

// Fetcher is the network collaborator.
type Fetcher interface {
	GetProducts(ctx context.Context) ([]model.ProductSummary, error)
	GetProductByID(ctx context.Context, id int64) (model.Product, error)
}

// Fetch performs the collaborator call that serves k.
func Fetch(ctx context.Context, f Fetcher, k Key) (Payload, error) {
	if k == ListKey {
		products, err := f.GetProducts(ctx)
		if err != nil {
			return Payload{}, fmt.Errorf("load products: %w", err)
		}
		if products == nil {
			products = []model.ProductSummary{}
		}
		return Payload{Products: products}, nil
	}

	id, ok := k.ProductID()
	if !ok {
		return Payload{}, fmt.Errorf("unknown catalog resource %q", k)
	}
	p, err := f.GetProductByID(ctx, id)
	if err != nil {
		return Payload{}, fmt.Errorf("load product %d: %w", id, err)
	}
	return Payload{Product: &p}, nil
}
