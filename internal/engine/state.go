package engine

import (
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/checkout"
)

// State is an immutable snapshot of the whole state tree.
//
// Snapshots share structure with each other; never modify a snapshot's maps
// through the values it returns (Checkout.Fields in particular).
type State struct {
	// Seq is the clock value of the transition that produced this snapshot.
	Seq int64

	Cart     cart.State
	Catalog  catalog.State
	Checkout checkout.Form

	// LatestOrderID is the id the backend assigned to the last accepted
	// order, 0 if none (only set when an OrderPlacer is configured).
	LatestOrderID int64
}

func initialState() State {
	return State{
		Cart:     cart.Empty(),
		Checkout: checkout.NewForm(),
	}
}
