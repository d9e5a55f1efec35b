package engine

import (
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/model"
)

// Action is a request to change the state tree. The set is closed: only the
// types in this file implement it.
type Action interface {
	// Name is the journal name of the action.
	Name() string

	// args returns the journal payload of the action once applied with
	// result s. nil means an empty payload.
	args(s State) map[string]any
}

// AddToCart puts one unit of Product in the cart.
type AddToCart struct {
	Product model.ProductSummary
}

// ClearCart empties the cart.
type ClearCart struct{}

// RequestCatalog loads the resource named by Key unless it is already
// loading. Re-issuing it after a failure is the manual retry.
type RequestCatalog struct {
	Key catalog.Key
}

// ResetCatalog forgets the resource named by Key. A response still in flight
// for it will be discarded.
type ResetCatalog struct {
	Key catalog.Key
}

// EditCheckout sets one form field's value.
type EditCheckout struct {
	Field checkout.Field
	Value string
}

// SubmitCheckout validates the form and submits it if every field passes.
// A non-nil Data replaces all three field values first, in the same
// transition.
type SubmitCheckout struct {
	Data *model.CheckoutFormData
}

// ResetCheckout returns the form to its freshly mounted state.
type ResetCheckout struct{}

// fetchCompleted carries a catalog fetch result back into the Run loop.
type fetchCompleted struct {
	Key     catalog.Key
	Seq     int64
	Payload catalog.Payload
	Err     error
}

func (AddToCart) Name() string      { return journal.ActionAddToCart }
func (ClearCart) Name() string      { return journal.ActionClearCart }
func (RequestCatalog) Name() string { return journal.ActionRequestCatalog }
func (ResetCatalog) Name() string   { return journal.ActionResetCatalog }
func (EditCheckout) Name() string   { return journal.ActionEditCheckout }
func (SubmitCheckout) Name() string { return journal.ActionSubmitCheckout }
func (ResetCheckout) Name() string  { return journal.ActionResetCheckout }
func (fetchCompleted) Name() string { return journal.ActionFetchCompleted }

func (a AddToCart) args(State) map[string]any {
	return map[string]any{"product": a.Product}
}

func (ClearCart) args(State) map[string]any { return nil }

func (a RequestCatalog) args(State) map[string]any {
	return map[string]any{"key": string(a.Key)}
}

func (a ResetCatalog) args(State) map[string]any {
	return map[string]any{"key": string(a.Key)}
}

// Field values are left out of the journal; phone and address are personal
// data.
func (a EditCheckout) args(State) map[string]any {
	return map[string]any{"field": string(a.Field), "length": len(a.Value)}
}

func (SubmitCheckout) args(s State) map[string]any {
	return map[string]any{"success": s.Checkout.Success}
}

func (ResetCheckout) args(State) map[string]any { return nil }

func (a fetchCompleted) args(State) map[string]any {
	out := map[string]any{"key": string(a.Key), "request_seq": a.Seq, "ok": a.Err == nil}
	if a.Err != nil {
		out["reason"] = a.Err.Error()
	}
	return out
}
