package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/storefront/internal/model"
)

// Products returns the four-product catalog used across tests.
func Products() []model.Product {
	return []model.Product{
		{ID: 0, Name: "Practical Chips", Price: 862, Description: "hi", Material: "m1", Color: "c1"},
		{ID: 1, Name: "Practical Soap", Price: 315, Description: "hello", Material: "m2", Color: "c2"},
		{ID: 2, Name: "Gorgeous Ball", Price: 433, Description: "good morning", Material: "m3", Color: "c3"},
		{ID: 3, Name: "Generic Keyboard", Price: 151, Description: "whats app", Material: "m4", Color: "c4"},
	}
}

// Summaries projects products to their listing form, keeping order.
func Summaries(products []model.Product) []model.ProductSummary {
	out := make([]model.ProductSummary, len(products))
	for i, p := range products {
		out[i] = p.Summary()
	}
	return out
}

// FakeFetcher is an in-memory catalog.Fetcher.
//
// Each call captures the catalog as it is when the call starts. While held
// (see Hold), calls block until released or their context ends, which lets
// tests keep a fetch in flight.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeFetcher struct {
	mu          sync.Mutex
	products    []model.Product
	listErr     error
	detailErr   error
	gate        chan struct{}
	listCalls   int
	detailCalls int
	started     chan Call
}

// Call records one collaborator call.
type Call struct {
	Method string // "GetProducts" or "GetProductByID"
	ID     int64
}

// NewFakeFetcher serves products.
func NewFakeFetcher(products []model.Product) *FakeFetcher {
	return &FakeFetcher{
		products: append([]model.Product(nil), products...),
		started:  make(chan Call, 64),
	}
}

// SetProducts replaces the served catalog.
func (f *FakeFetcher) SetProducts(products []model.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append([]model.Product(nil), products...)
}

// FailList makes GetProducts return err (nil to recover).
func (f *FakeFetcher) FailList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// FailDetail makes GetProductByID return err (nil to recover).
func (f *FakeFetcher) FailDetail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailErr = err
}

// Hold makes calls that start from now on block until the returned release
// function is called.
func (f *FakeFetcher) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gate == gate {
				f.gate = nil
			}
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Started delivers one Call per collaborator call, as it starts.
func (f *FakeFetcher) Started() <-chan Call {
	return f.started
}

// ListCalls returns how many times GetProducts was called.
func (f *FakeFetcher) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// DetailCalls returns how many times GetProductByID was called.
func (f *FakeFetcher) DetailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls
}

// GetProducts implements catalog.Fetcher.
func (f *FakeFetcher) GetProducts(ctx context.Context) ([]model.ProductSummary, error) {
	f.mu.Lock()
	f.listCalls++
	products := Summaries(f.products)
	err := f.listErr
	gate := f.gate
	f.mu.Unlock()

	f.notify(Call{Method: "GetProducts"})
	if err := wait(ctx, gate); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductByID implements catalog.Fetcher.
func (f *FakeFetcher) GetProductByID(ctx context.Context, id int64) (model.Product, error) {
	f.mu.Lock()
	f.detailCalls++
	var (
		found model.Product
		ok    bool
	)
	for _, p := range f.products {
		if p.ID == id {
			found, ok = p, true
			break
		}
	}
	err := f.detailErr
	gate := f.gate
	f.mu.Unlock()

	f.notify(Call{Method: "GetProductByID", ID: id})
	if err := wait(ctx, gate); err != nil {
		return model.Product{}, err
	}
	if err != nil {
		return model.Product{}, err
	}
	if !ok {
		return model.Product{}, fmt.Errorf("product %d not found", id)
	}
	return found, nil
}

func (f *FakeFetcher) notify(c Call) {
	select {
	case f.started <- c:
	default:
	}
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
