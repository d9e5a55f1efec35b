package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/model"
)

// Scenario defines a storefront scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the journal session id. Defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Catalog is what the fake backend serves, in listing order. Empty means
	// the standard four-product test catalog.
	Catalog []model.Product `yaml:"catalog,omitempty"`

	// Failures makes collaborators fail with the given messages.
	Failures Failures `yaml:"failures,omitempty"`

	// Setup steps run before the flow. They must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the main sequence of actions.
	Flow []Step `yaml:"flow"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Failures configures collaborator errors.
type Failures struct {
	List   string `yaml:"list,omitempty"`   // GetProducts
	Detail string `yaml:"detail,omitempty"` // GetProductByID
	Submit string `yaml:"submit,omitempty"` // checkout submitter
}

// Step dispatches one action.
type Step struct {
	// Action is the journal name of the action (e.g. "add_to_cart").
	Action string `yaml:"action"`

	// Args are the action arguments:
	//   add_to_cart      {product: <id>} or {id, name, price}
	//   request_catalog  {key: products} or {product: <id>}
	//   reset_catalog    same as request_catalog
	//   edit_checkout    {field, value}
	//   others           {}
	Args map[string]any `yaml:"args"`

	// Expect checks the dispatch outcome. Nil means it must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected dispatch outcome.
type ExpectClause struct {
	// Case is "ok" or an action error code (e.g. "INVALID_KEY").
	Case string `yaml:"case"`
}

// CaseOK is the outcome of an applied action.
const CaseOK = "ok"

// Assertion validates trace or final state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state,
	// replay_deterministic, submissions.
	Type string `yaml:"type"`

	// Action is the action name (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args is a subset of the journaled payload (trace_contains).
	Args map[string]any `yaml:"args,omitempty"`

	// Table is the state table (final_state): cart, totals, catalog,
	// checkout.
	Table string `yaml:"table,omitempty"`

	// Where selects exactly one row (final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect is a subset of the selected row (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number (trace_count, submissions).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains       = "trace_contains"
	AssertTraceOrder          = "trace_order"
	AssertTraceCount          = "trace_count"
	AssertFinalState          = "final_state"
	AssertReplayDeterministic = "replay_deterministic"
	AssertSubmissions         = "submissions"
)

// State table names.
const (
	TableCart     = "cart"
	TableTotals   = "totals"
	TableCatalog  = "catalog"
	TableCheckout = "checkout"
)

var knownActions = map[string]bool{
	journal.ActionAddToCart:      true,
	journal.ActionClearCart:      true,
	journal.ActionRequestCatalog: true,
	journal.ActionResetCatalog:   true,
	journal.ActionEditCheckout:   true,
	journal.ActionSubmitCheckout: true,
	journal.ActionResetCheckout:  true,
}

var knownTables = map[string]bool{
	TableCart:     true,
	TableTotals:   true,
	TableCatalog:  true,
	TableCheckout: true,
}

// LoadScenario reads the scenario at path. Unknown YAML keys are errors, so
// a misspelled field fails loudly instead of being ignored.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios lists the .yaml/.yml files directly under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenario rejects scenarios the runner cannot execute: missing
// header fields, an empty flow or assertion list, bad catalog products,
// unknown step actions and malformed assertions.
func validateScenario(s *Scenario) error {
	switch {
	case s.Name == "":
		return errors.New("name is required")
	case s.Description == "":
		return errors.New("description is required")
	case len(s.Flow) == 0:
		return errors.New("flow must list at least one step")
	case len(s.Assertions) == 0:
		return errors.New("assertions must list at least one check")
	}

	for i, p := range s.Catalog {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("catalog[%d]: %w", i, err)
		}
	}
	for _, part := range []struct {
		name  string
		steps []Step
	}{{"setup", s.Setup}, {"flow", s.Flow}} {
		for i, step := range part.steps {
			if err := validateStep(step); err != nil {
				return fmt.Errorf("%s[%d]: %w", part.name, i, err)
			}
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch {
	case step.Action == "":
		return errors.New("action is required")
	case !knownActions[step.Action]:
		return fmt.Errorf("unknown action %q", step.Action)
	case step.Args == nil:
		return errors.New("args is required (use {} for none)")
	case step.Expect != nil && step.Expect.Case == "":
		return errors.New("expect: case is required")
	}
	return nil
}

// validateAssertion checks the fields each assertion type reads.
func validateAssertion(a Assertion) error {
	needAction := func() error {
		if a.Action == "" {
			return fmt.Errorf("%s needs an action", a.Type)
		}
		return nil
	}
	needCount := func() error {
		if a.Count < 0 {
			return fmt.Errorf("%s count must not be negative", a.Type)
		}
		return nil
	}

	switch a.Type {
	case "":
		return errors.New("type is required")
	case AssertTraceContains:
		return needAction()
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("%s needs actions", a.Type)
		}
	case AssertTraceCount:
		if err := needAction(); err != nil {
			return err
		}
		return needCount()
	case AssertFinalState:
		if !knownTables[a.Table] {
			return fmt.Errorf("unknown table %q for %s", a.Table, a.Type)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("%s needs expect", a.Type)
		}
	case AssertReplayDeterministic:
	case AssertSubmissions:
		return needCount()
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// stepKey reads the catalog key of a request_catalog/reset_catalog step.
func stepKey(args map[string]any) (catalog.Key, error) {
	if v, ok := args["product"]; ok {
		id, err := toInt64(v)
		if err != nil {
			return "", fmt.Errorf("product: %w", err)
		}
		return catalog.ProductKey(id), nil
	}
	key, _ := args["key"].(string)
	if key == "" {
		return "", fmt.Errorf("key or product is required")
	}
	return catalog.Key(key), nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
