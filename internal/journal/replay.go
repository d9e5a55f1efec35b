package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/model"
)

// Action names written by the engine. Replay understands the ones that touch
// the cart; every other action is carried through unchanged.
const (
	ActionAddToCart      = "add_to_cart"
	ActionClearCart      = "clear_cart"
	ActionRequestCatalog = "request_catalog"
	ActionResetCatalog   = "reset_catalog"
	ActionFetchCompleted = "fetch_completed"
	ActionEditCheckout   = "edit_checkout"
	ActionSubmitCheckout = "submit_checkout"
	ActionResetCheckout  = "reset_checkout"
)

// Mismatch is a journaled transition whose recorded cart figures disagree
// with the replayed cart.
type Mismatch struct {
	Seq              int64
	Action           string
	RecordedTotal    int64
	ReplayedTotal    int64
	RecordedDistinct int
	ReplayedDistinct int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("seq=%d %s: total %d != %d, distinct %d != %d",
		m.Seq, m.Action, m.RecordedTotal, m.ReplayedTotal, m.RecordedDistinct, m.ReplayedDistinct)
}

// ReplayResult is the outcome of replaying one session.
type ReplayResult struct {
	Session    string
	Entries    int
	LastSeq    int64
	Cart       cart.State
	Mismatches []Mismatch
}

// Deterministic reports whether every replayed step matched the journal.
func (r ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

type addPayload struct {
	Product model.ProductSummary `json:"product"`
}

type submitPayload struct {
	Success bool `json:"success"`
}

// Replay rebuilds the cart of session through the cart reducer and compares
// it with the figures recorded at each step.
func (j *Journal) Replay(ctx context.Context, session string) (ReplayResult, error) {
	entries, err := j.ReadSession(ctx, session)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", session, err)
	}

	result := ReplayResult{Session: session, Entries: len(entries)}
	s := cart.Empty()
	for _, e := range entries {
		s, err = applyEntry(s, e)
		if err != nil {
			return result, fmt.Errorf("replay %s: %w", session, err)
		}
		result.LastSeq = e.Seq

		total, distinct := cart.Total(s), cart.DistinctCount(s)
		if total != e.CartTotal || distinct != e.CartDistinct {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Seq:              e.Seq,
				Action:           e.Action,
				RecordedTotal:    e.CartTotal,
				ReplayedTotal:    total,
				RecordedDistinct: e.CartDistinct,
				ReplayedDistinct: distinct,
			})
		}
	}
	result.Cart = s
	return result, nil
}

func applyEntry(s cart.State, e Entry) (cart.State, error) {
	switch e.Action {
	case ActionAddToCart:
		var p addPayload
		if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
			return s, fmt.Errorf("decode seq=%d %s: %w", e.Seq, e.Action, err)
		}
		return cart.AddItem(s, p.Product), nil
	case ActionClearCart:
		return cart.Clear(s), nil
	case ActionSubmitCheckout:
		var p submitPayload
		if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
			return s, fmt.Errorf("decode seq=%d %s: %w", e.Seq, e.Action, err)
		}
		if p.Success {
			return cart.Clear(s), nil
		}
		return s, nil
	default:
		return s, nil
	}
}
