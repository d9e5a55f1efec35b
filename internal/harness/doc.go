// Package harness runs storefront scenarios against a real engine.
//
// A scenario is a YAML file naming a catalog, optional collaborator
// failures, a flow of actions, and assertions. Run builds a fresh engine
// backed by an in-memory fetcher, a recording submitter, and an in-memory
// journal, dispatches the flow, and returns:
//
//   - the trace: every journaled transition, in seq order
//   - the final state rendered as tables (cart, totals, catalog, checkout)
//   - whether a journal replay reproduces the cart figures
//
// Catalog requests are awaited before the next step, so traces are
// deterministic and can be compared against golden files (RunWithGolden).
//
// Example scenario:
//
//	name: checkout_clears_cart
//	description: A valid checkout clears the cart
//	flow:
//	  - action: add_to_cart
//	    args: {product: 1}
//	  - action: edit_checkout
//	    args: {field: name, value: Ann}
//	  - action: submit_checkout
//	    args: {}
//	assertions:
//	  - type: final_state
//	    table: totals
//	    expect: {total: 0, distinct: 0}
package harness
