// Package model holds the storefront data model shared by every other
// package: products as returned by the catalog backend, cart line items, and
// checkout form data.
//
// This package imports nothing internal. Prices are integer amounts in the
// store's single currency; there are no float fields anywhere.
//
// Snapshot encoding uses MarshalCanonical so that golden files and journal
// payloads are byte-stable across runs (sorted keys, NFC strings).
package model
