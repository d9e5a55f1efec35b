package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Action: "request_catalog", Args: map[string]any{"key": "products"}},
		{Seq: 2, Action: "fetch_completed", Args: map[string]any{"key": "products", "ok": true, "request_seq": 1}},
		{Seq: 3, Action: "add_to_cart", Args: map[string]any{"product": map[string]any{"id": 0, "name": "Practical Chips", "price": 862}}, CartTotal: 862, CartDistinct: 1},
	}
}

func traceResult() *Result {
	r := NewResult()
	r.Trace = sampleTrace()
	return r
}

func TestCheckTraceContains(t *testing.T) {
	r := traceResult()

	assert.NoError(t, checkTraceContains(r, Assertion{Action: "fetch_completed", Args: map[string]any{"ok": true}}))
	assert.NoError(t, checkTraceContains(r, Assertion{Action: "add_to_cart", Args: map[string]any{"product": map[string]any{"name": "Practical Chips"}}}))
	assert.NoError(t, checkTraceContains(r, Assertion{Action: "fetch_completed", Args: map[string]any{"request_seq": int64(1)}}), "integer types compare alike")

	err := checkTraceContains(r, Assertion{Action: "fetch_completed", Args: map[string]any{"ok": false}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Kind)
	assert.Contains(t, err.Error(), "no matching event")
	assert.Contains(t, err.Error(), "#3 add_to_cart")
}

func TestCheckTraceOrder(t *testing.T) {
	r := traceResult()

	assert.NoError(t, checkTraceOrder(r, Assertion{Actions: []string{"request_catalog", "add_to_cart"}}))
	assert.NoError(t, checkTraceOrder(r, Assertion{Actions: []string{"request_catalog", "fetch_completed", "add_to_cart"}}))
	assert.ErrorContains(t, checkTraceOrder(r, Assertion{Actions: []string{"add_to_cart", "request_catalog"}}), "request_catalog at #1, not after add_to_cart at #3")
	assert.ErrorContains(t, checkTraceOrder(r, Assertion{Actions: []string{"clear_cart"}}), "no clear_cart event")
}

func TestCheckTraceCount(t *testing.T) {
	r := traceResult()

	assert.NoError(t, checkTraceCount(r, Assertion{Action: "add_to_cart", Count: 1}))
	assert.NoError(t, checkTraceCount(r, Assertion{Action: "clear_cart", Count: 0}))
	assert.ErrorContains(t, checkTraceCount(r, Assertion{Action: "add_to_cart", Count: 2}), "want add_to_cart x2, got x1")
}

func TestCheckFinalState(t *testing.T) {
	r := NewResult()
	r.State = map[string][]Row{
		TableCart: {
			{"name": "Practical Chips", "price": int64(862), "count": 2},
			{"name": "Practical Soap", "price": int64(315), "count": 2},
		},
		TableTotals: {{"total": int64(2354), "distinct": 2}},
	}

	assert.NoError(t, checkFinalState(r, Assertion{Table: TableTotals, Expect: map[string]any{"total": 2354}}))
	assert.NoError(t, checkFinalState(r, Assertion{Table: TableCart, Where: map[string]any{"name": "Practical Soap"}, Expect: map[string]any{"price": 315}}))

	assert.ErrorContains(t, checkFinalState(r, Assertion{Table: TableCart, Expect: map[string]any{"count": 2}}), "ambiguous")
	assert.ErrorContains(t, checkFinalState(r, Assertion{Table: TableCart, Where: map[string]any{"name": "Ball"}, Expect: map[string]any{"count": 1}}), "got no row")
	assert.ErrorContains(t, checkFinalState(r, Assertion{Table: TableTotals, Expect: map[string]any{"tax": 0}}), `want column "tax"`)
	assert.ErrorContains(t, checkFinalState(r, Assertion{Table: TableTotals, Expect: map[string]any{"total": 1}}), "want totals.total = 1, got 2354")
	assert.ErrorContains(t, checkFinalState(r, Assertion{Table: "orders", Expect: map[string]any{"id": 1}}), "unknown table")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()
	result.ReplayDeterministic = false
	result.Submissions = 1

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Action: "add_to_cart", Count: 1},
		{Type: AssertReplayDeterministic},
		{Type: AssertSubmissions, Count: 2},
		{Type: "bogus"},
	})
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "replay diverged")
	assert.Contains(t, errs[1], "want 2 checkout submissions, got 1")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(int64(3), 3))
	assert.True(t, valuesEqual(3, uint64(3)))
	assert.False(t, valuesEqual(int64(3), "3"))
	assert.True(t, valuesEqual([]any{1, "a"}, []any{int64(1), "a"}))
	assert.False(t, valuesEqual([]any{1}, []any{1, 2}))
	assert.True(t, valuesEqual(true, true))
}
