// Package api is the storefront's network side.
//
// Client talks to the store backend and implements catalog.Fetcher and
// engine.OrderPlacer. Server is a small demo backend serving the same routes
// from a catalog fixture, used by the CLI and by tests.
//
// Routes, relative to the basename (default /hw/store):
//
//	GET  /api/products       product summaries, in catalog order
//	GET  /api/products/{id}  one product
//	POST /api/checkout       {form, cart} -> {id}
package api
