package harness

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// AssertionError describes a failed scenario assertion.
type AssertionError struct {
	Kind  string // assertion type
	Want  string
	Got   string
	Trace []TraceEvent // attached for trace assertions
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: want %s, got %s", e.Kind, e.Want, e.Got)
	if len(e.Trace) > 0 {
		b.WriteString("\n  trace:")
		for _, ev := range e.Trace {
			fmt.Fprintf(&b, "\n    #%d %s %v", ev.Seq, ev.Action, ev.Args)
		}
	}
	return b.String()
}

type checkFunc func(r *Result, a Assertion) error

var checks = map[string]checkFunc{
	AssertTraceContains:       checkTraceContains,
	AssertTraceOrder:          checkTraceOrder,
	AssertTraceCount:          checkTraceCount,
	AssertFinalState:          checkFinalState,
	AssertReplayDeterministic: checkReplay,
	AssertSubmissions:         checkSubmissions,
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var msgs []string
	for i, a := range assertions {
		check, ok := checks[a.Type]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("assertion[%d]: unknown assertion type %q", i, a.Type))
			continue
		}
		if err := check(result, a); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

// checkTraceContains passes if some event has the action and its args
// include a.Args.
func checkTraceContains(r *Result, a Assertion) error {
	if slices.ContainsFunc(r.Trace, func(ev TraceEvent) bool {
		return ev.Action == a.Action && matchArgs(ev.Args, a.Args)
	}) {
		return nil
	}
	return &AssertionError{
		Kind:  AssertTraceContains,
		Want:  fmt.Sprintf("%s with args %v", a.Action, a.Args),
		Got:   "no matching event",
		Trace: r.Trace,
	}
}

// checkTraceOrder passes if the first occurrence of each action comes after
// the first occurrence of the one listed before it.
func checkTraceOrder(r *Result, a Assertion) error {
	first := make(map[string]int, len(a.Actions))
	for i, ev := range r.Trace {
		if _, seen := first[ev.Action]; !seen {
			first[ev.Action] = i
		}
	}

	last := -1
	for j, action := range a.Actions {
		pos, ok := first[action]
		if !ok {
			return &AssertionError{
				Kind:  AssertTraceOrder,
				Want:  fmt.Sprintf("every action of %v", a.Actions),
				Got:   "no " + action + " event",
				Trace: r.Trace,
			}
		}
		if pos <= last {
			return &AssertionError{
				Kind:  AssertTraceOrder,
				Want:  fmt.Sprintf("order %v", a.Actions),
				Got:   fmt.Sprintf("%s at #%d, not after %s at #%d", action, pos+1, a.Actions[j-1], last+1),
				Trace: r.Trace,
			}
		}
		last = pos
	}
	return nil
}

func checkTraceCount(r *Result, a Assertion) error {
	n := 0
	for _, ev := range r.Trace {
		if ev.Action == a.Action {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Kind:  AssertTraceCount,
		Want:  fmt.Sprintf("%s x%d", a.Action, a.Count),
		Got:   fmt.Sprintf("x%d", n),
		Trace: r.Trace,
	}
}

// checkFinalState picks the single row of a.Table matching a.Where and
// compares the columns named in a.Expect.
func checkFinalState(r *Result, a Assertion) error {
	rows, ok := r.State[a.Table]
	if !ok {
		return fmt.Errorf("%s: unknown table %q", AssertFinalState, a.Table)
	}

	var hits []Row
	for _, row := range rows {
		if matchArgs(row, a.Where) {
			hits = append(hits, row)
		}
	}
	if len(hits) != 1 {
		got := "no row"
		if len(hits) > 1 {
			got = fmt.Sprintf("%d rows (ambiguous where)", len(hits))
		}
		return &AssertionError{
			Kind: AssertFinalState,
			Want: fmt.Sprintf("one %s row where %s", a.Table, describeWhere(a.Where)),
			Got:  got,
		}
	}

	row := hits[0]
	for _, col := range slices.Sorted(maps.Keys(a.Expect)) {
		want := a.Expect[col]
		got, ok := row[col]
		if !ok {
			return &AssertionError{
				Kind: AssertFinalState,
				Want: fmt.Sprintf("column %q", col),
				Got:  fmt.Sprintf("columns %v", slices.Sorted(maps.Keys(row))),
			}
		}
		if !valuesEqual(got, want) {
			return &AssertionError{
				Kind: AssertFinalState,
				Want: fmt.Sprintf("%s.%s = %v", a.Table, col, want),
				Got:  fmt.Sprintf("%v", got),
			}
		}
	}
	return nil
}

func checkReplay(r *Result, _ Assertion) error {
	if r.ReplayDeterministic {
		return nil
	}
	return &AssertionError{
		Kind:  AssertReplayDeterministic,
		Want:  "replayed carts equal to the journaled figures",
		Got:   "replay diverged",
		Trace: r.Trace,
	}
}

func checkSubmissions(r *Result, a Assertion) error {
	if r.Submissions == a.Count {
		return nil
	}
	return &AssertionError{
		Kind: AssertSubmissions,
		Want: fmt.Sprintf("%d checkout submissions", a.Count),
		Got:  fmt.Sprintf("%d", r.Submissions),
	}
}

func describeWhere(where map[string]any) string {
	if len(where) == 0 {
		return "(any)"
	}
	parts := make([]string, 0, len(where))
	for _, k := range slices.Sorted(maps.Keys(where)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, ", ")
}

// matchArgs reports whether actual holds every key of expected with an
// equal value. Extra keys are ignored.
func matchArgs[M ~map[string]any](actual M, expected map[string]any) bool {
	for k, want := range expected {
		got, ok := actual[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual treats every integer type alike, matches nested maps as
// subsets and compares slices element-wise.
func valuesEqual(got, want any) bool {
	if g, ok := asInt(got); ok {
		w, ok := asInt(want)
		return ok && g == w
	}

	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		return ok && matchArgs(g, w)
	case []any:
		g, ok := got.([]any)
		return ok && slices.EqualFunc(g, w, valuesEqual)
	}
	return reflect.DeepEqual(got, want)
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
