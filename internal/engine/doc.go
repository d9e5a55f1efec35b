// Package engine implements the storefront state container.
//
// The engine owns the single state tree (cart, catalog loading state,
// checkout form). Presentation code reads immutable snapshots with GetState,
// subscribes to changes, and changes state only by dispatching actions.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every action goes through one FIFO queue and is applied by the Run
// goroutine, one at a time. Two dispatches never interleave, so reducers need
// no locking and subscribers always see complete transitions.
//
// Processing Flow:
//  1. Dispatch enqueues an action and waits for its result
//  2. Run dequeues it and applies it to the state tree
//  3. The transition gets the next seq from the logical clock
//  4. The transition is journaled (when a journal is configured)
//  5. Subscribers are notified with the new snapshot
//
// Catalog fetches are the only suspension point. RequestCatalog starts the
// fetch on its own goroutine and returns at once; the result comes back
// through the queue as a fetch completion tagged with the request's seq.
//
// ORDERING:
//
// A request for a key that is already Loading is coalesced into the one in
// flight. A completion whose seq is not the key's current request seq is
// stale and silently discarded (debug log only, no notification).
//
// Seqs come from Clock, never from wall time.
package engine
