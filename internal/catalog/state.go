package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/storefront/internal/model"
)

// Status is the loading status of one resource.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Key identifies a resource.
type Key string

// ListKey is the whole catalog listing.
const ListKey Key = "products"

const productKeyPrefix = "product/"

// ProductKey is the detail resource of product id.
func ProductKey(id int64) Key {
	return Key(productKeyPrefix + strconv.FormatInt(id, 10))
}

// ProductID extracts the id from a product detail key.
func (k Key) ProductID() (int64, bool) {
	rest, ok := strings.CutPrefix(string(k), productKeyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Valid reports whether k is ListKey or a well-formed product key.
func (k Key) Valid() bool {
	if k == ListKey {
		return true
	}
	_, ok := k.ProductID()
	return ok
}

// Payload is the data a successful fetch produced. Exactly one of the fields
// is set, depending on the key.
type Payload struct {
	Products []model.ProductSummary
	Product  *model.Product
}

// Entry is the state of one resource.
type Entry struct {
	Status  Status
	Seq     int64 // sequence number of the request that produced this entry
	Payload Payload
	Reason  string // set when Failed
}

// ErrStaleResponse marks a completion that no longer matches the request in
// flight for its key.
var ErrStaleResponse = errors.New("stale response")

// State is the set of tracked resources. The zero value has every key Idle.
type State struct {
	entries map[Key]Entry
}

// Entry returns the entry for k; untracked keys are Idle.
func (s State) Entry(k Key) Entry {
	return s.entries[k]
}

// Keys returns every tracked key in sorted order.
func (s State) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Begin starts a request for k at seq. It returns false and the unchanged
// state if k is already Loading.
func (s State) Begin(k Key, seq int64) (State, bool) {
	if s.entries[k].Status == StatusLoading {
		return s, false
	}
	return s.with(k, Entry{Status: StatusLoading, Seq: seq}), true
}

// Resolve applies a successful completion of request seq for k.
// The payload is kept as given; listing order is the server's order.
func (s State) Resolve(k Key, seq int64, p Payload) (State, error) {
	if err := s.checkCurrent(k, seq); err != nil {
		return s, err
	}
	return s.with(k, Entry{Status: StatusLoaded, Seq: seq, Payload: clonePayload(p)}), nil
}

// Reject applies a failed completion of request seq for k.
func (s State) Reject(k Key, seq int64, reason string) (State, error) {
	if err := s.checkCurrent(k, seq); err != nil {
		return s, err
	}
	return s.with(k, Entry{Status: StatusFailed, Seq: seq, Reason: reason}), nil
}

// Reset returns k to Idle.
func (s State) Reset(k Key) State {
	if _, ok := s.entries[k]; !ok {
		return s
	}
	next := State{entries: make(map[Key]Entry, len(s.entries))}
	for key, e := range s.entries {
		if key != k {
			next.entries[key] = e
		}
	}
	return next
}

func (s State) checkCurrent(k Key, seq int64) error {
	e := s.entries[k]
	if e.Status != StatusLoading || e.Seq != seq {
		return fmt.Errorf("%w: key=%s seq=%d current_seq=%d status=%s", ErrStaleResponse, k, seq, e.Seq, e.Status)
	}
	return nil
}

func (s State) with(k Key, e Entry) State {
	next := State{entries: make(map[Key]Entry, len(s.entries)+1)}
	for key, existing := range s.entries {
		next.entries[key] = existing
	}
	next.entries[k] = e
	return next
}

func clonePayload(p Payload) Payload {
	var out Payload
	if p.Products != nil {
		out.Products = append([]model.ProductSummary(nil), p.Products...)
	}
	if p.Product != nil {
		prod := *p.Product
		out.Product = &prod
	}
	return out
}
