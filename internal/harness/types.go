package harness

// TraceEvent is one journaled transition.
type TraceEvent struct {
	Seq    int64          `json:"seq"`
	Action string         `json:"action"`
	Args   map[string]any `json:"args"`

	// Cart figures after the transition.
	CartTotal    int64 `json:"cart_total"`
	CartDistinct int   `json:"cart_distinct"`
}

// Row is one row of a state table.
type Row map[string]any

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists every applied transition in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// State is the final state, keyed by table name.
	State map[string][]Row `json:"state,omitempty"`

	// ReplayDeterministic reports whether replaying the journal rebuilt the
	// same cart figures at every step.
	ReplayDeterministic bool `json:"replay_deterministic"`

	// Submissions counts calls to the checkout collaborator.
	Submissions int `json:"submissions"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string][]Row),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
