package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/storefront/internal/model"
)

// DefaultBasename is the path prefix the store is mounted under.
const DefaultBasename = "/hw/store"

// StatusError is a non-2xx backend response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string // e.g. "404 Not Found"
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

// Client is the HTTP client of the store backend.
//
// Thread-safety: Client is safe for concurrent use.
type Client struct {
	base string // scheme://host + basename, no trailing slash
	http *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// NewClient creates a client of the backend at baseURL, with the store
// mounted under basename ("" means DefaultBasename, "/" means the root).
func NewClient(baseURL, basename string, opts ...ClientOption) *Client {
	if basename == "" {
		basename = DefaultBasename
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/") + "/" + strings.Trim(basename, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	c.base = strings.TrimRight(c.base, "/")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetProducts returns the product listing in the server's order.
func (c *Client) GetProducts(ctx context.Context) ([]model.ProductSummary, error) {
	var products []model.ProductSummary
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.ProductSummary{}
	}
	return products, nil
}

// GetProductByID returns one product's details.
func (c *Client) GetProductByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// CheckoutRequest is the body of POST /api/checkout. Cart is keyed by
// product name, like the client-side cart.
type CheckoutRequest struct {
	Form model.CheckoutFormData        `json:"form"`
	Cart map[string]model.CartLineItem `json:"cart"`
}

// CheckoutResponse carries the id the backend assigned to the order.
type CheckoutResponse struct {
	ID int64 `json:"id"`
}

// Checkout places an order for items and returns its id.
func (c *Client) Checkout(ctx context.Context, form model.CheckoutFormData, items []model.CartLineItem) (int64, error) {
	req := CheckoutRequest{Form: form, Cart: make(map[string]model.CartLineItem, len(items))}
	for _, item := range items {
		req.Cart[item.Name] = item
	}
	var resp CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/checkout", req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	url := c.base + path

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, url, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, url, err)
	}
	return nil
}
