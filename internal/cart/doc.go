// Package cart implements the cart reducer.
//
// Every operation is a pure function over State. A State value is never
// modified after it is built: AddItem and Clear return new values and leave
// their input untouched, so snapshots handed to subscribers stay valid.
//
// Line items are keyed by product name, not product id. Two different
// products that share a name merge into one line. This mirrors how the
// storefront has always behaved and is kept on purpose; see DistinctCount.
package cart
