package model

import "fmt"

// Product is the full product record served by GET /api/products/{id}.
// Immutable once fetched.
type Product struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Price       int64  `json:"price" yaml:"price"`
	Description string `json:"description" yaml:"description"`
	Material    string `json:"material" yaml:"material"`
	Color       string `json:"color" yaml:"color"`
}

// Summary projects the listing fields of a product.
func (p Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price}
}

// ProductSummary is one entry of the catalog listing.
type ProductSummary struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Price int64  `json:"price" yaml:"price"`
}

// CartLineItem is one de-duplicated cart entry. Count is always >= 1.
type CartLineItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Count int    `json:"count"`
}

// CheckoutFormData is what the checkout form hands to the submission
// collaborator once every field is valid.
type CheckoutFormData struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Validate rejects records the backend should never have produced.
func (p Product) Validate() error {
	if p.ID < 0 {
		return fmt.Errorf("product %q: negative id %d", p.Name, p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %d: negative price %d", p.ID, p.Price)
	}
	return nil
}

// Validate rejects a summary that cannot go in the cart.
func (p ProductSummary) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("product %d: empty name", p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %d: negative price %d", p.ID, p.Price)
	}
	return nil
}
