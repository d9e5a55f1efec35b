// Package catalog tracks the loading state of catalog resources.
//
// Each resource (the product listing, or one product's details) moves
// through Idle -> Loading -> Loaded | Failed. State is an immutable value;
// every transition returns a new State.
//
// ORDERING:
//
// A request for a key that is already Loading is a no-op (Begin returns
// false), so at most one fetch per key is in flight. Each fetch that does
// start is stamped with a sequence number taken from the caller's logical
// clock. A completion is applied only when the entry is still Loading at that
// same sequence number; anything else returns ErrStaleResponse and leaves the
// state untouched. Reset moves a key back to Idle, which makes any response
// still in flight for it stale.
package catalog
