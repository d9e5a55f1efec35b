package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/testutil"
)

// AwaitTimeout bounds how long a step waits for a catalog fetch.
const AwaitTimeout = 5 * time.Second

// Harness holds one scenario's engine and collaborators.
type Harness struct {
	engine    *engine.Engine
	journal   *journal.Journal
	fetcher   *testutil.FakeFetcher
	submitter *testutil.RecordingSubmitter
	catalog   []model.Product
	session   string
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh engine and in-memory journal.
//
// Execution flow:
// 1. Build collaborators from the scenario's catalog and failures
// 2. Execute setup steps (must succeed)
// 3. Execute flow steps, checking expect clauses
// 4. Stop the engine and read the journal as the trace
// 5. Render final state tables and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	j, err := journal.Open(journal.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	products := scenario.Catalog
	if len(products) == 0 {
		products = testutil.Products()
	}
	fetcher := testutil.NewFakeFetcher(products)
	if scenario.Failures.List != "" {
		fetcher.FailList(errors.New(scenario.Failures.List))
	}
	if scenario.Failures.Detail != "" {
		fetcher.FailDetail(errors.New(scenario.Failures.Detail))
	}
	submitter := &testutil.RecordingSubmitter{}
	if scenario.Failures.Submit != "" {
		submitter.Fail(errors.New(scenario.Failures.Submit))
	}

	sessions := testutil.NewFixedSessionGenerator(scenario.Session)
	h := &Harness{
		journal:   j,
		fetcher:   fetcher,
		submitter: submitter,
		catalog:   products,
		session:   sessions.Generate(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.engine = engine.New(fetcher,
		engine.WithSubmitter(submitter.Submit),
		engine.WithJournal(j),
		engine.WithSessionGenerator(sessions),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.engine.Run(ctx)
	}()

	result := NewResult()
	runErr := h.executeSetup(ctx, scenario.Setup)
	if runErr == nil {
		runErr = h.executeFlow(ctx, scenario.Flow, result)
	}

	final := h.engine.GetState()
	h.engine.Stop()
	<-done
	cancel()
	if runErr != nil {
		return nil, runErr
	}

	bg := context.Background()
	if err := h.collectTrace(bg, result); err != nil {
		return nil, err
	}
	replay, err := j.Replay(bg, h.session)
	if err != nil {
		return nil, fmt.Errorf("replay journal: %w", err)
	}
	result.ReplayDeterministic = replay.Deterministic()
	result.Submissions = len(submitter.Calls())
	result.State = RenderState(final)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// executeSetup runs all setup steps. Any failure aborts the scenario.
func (h *Harness) executeSetup(ctx context.Context, setup []Step) error {
	for i, step := range setup {
		outcome, err := h.executeStep(ctx, step)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		if outcome != CaseOK {
			return fmt.Errorf("setup step %d: %s failed with %s", i, step.Action, outcome)
		}
		h.logger.Info("setup step completed", "step", i, "action", step.Action)
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses. A mismatched
// outcome is recorded as a result error and the flow continues.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		outcome, err := h.executeStep(ctx, step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		want := CaseOK
		if step.Expect != nil {
			want = step.Expect.Case
		}
		if outcome != want {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected case %s, got %s", i, step.Action, want, outcome))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"action", step.Action,
			"outcome", outcome,
		)
	}
	return nil
}

// executeStep dispatches one step and returns its outcome case. A returned
// error means the harness itself could not run the step.
func (h *Harness) executeStep(ctx context.Context, step Step) (string, error) {
	action, err := h.buildAction(step)
	if err != nil {
		return "", err
	}

	s, err := h.engine.Dispatch(ctx, action)
	if err != nil {
		var ae *engine.ActionError
		if errors.As(err, &ae) {
			return string(ae.Code), nil
		}
		return "", fmt.Errorf("dispatch %s: %w", step.Action, err)
	}

	if req, ok := action.(engine.RequestCatalog); ok {
		if err := h.await(ctx, req.Key, s.Catalog.Entry(req.Key)); err != nil {
			return "", err
		}
	}
	return CaseOK, nil
}

// await waits until the fetch begun for k (entry started) has completed.
func (h *Harness) await(ctx context.Context, k catalog.Key, started catalog.Entry) error {
	if started.Status != catalog.StatusLoading {
		return nil
	}
	deadline := time.NewTimer(AwaitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		e := h.engine.GetState().Catalog.Entry(k)
		if e.Status != catalog.StatusLoading || e.Seq != started.Seq {
			return nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return fmt.Errorf("await %s: still loading after %s", k, AwaitTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *Harness) buildAction(step Step) (engine.Action, error) {
	switch step.Action {
	case journal.ActionAddToCart:
		p, err := h.productArg(step.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Action, err)
		}
		return engine.AddToCart{Product: p}, nil

	case journal.ActionClearCart:
		return engine.ClearCart{}, nil

	case journal.ActionRequestCatalog:
		k, err := stepKey(step.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Action, err)
		}
		return engine.RequestCatalog{Key: k}, nil

	case journal.ActionResetCatalog:
		k, err := stepKey(step.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Action, err)
		}
		return engine.ResetCatalog{Key: k}, nil

	case journal.ActionEditCheckout:
		field, _ := step.Args["field"].(string)
		value, _ := step.Args["value"].(string)
		return engine.EditCheckout{Field: checkout.Field(field), Value: value}, nil

	case journal.ActionSubmitCheckout:
		return engine.SubmitCheckout{}, nil

	case journal.ActionResetCheckout:
		return engine.ResetCheckout{}, nil

	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}
}

// productArg resolves {product: <id>} against the scenario catalog, or reads
// an explicit {id, name, price}.
func (h *Harness) productArg(args map[string]any) (model.ProductSummary, error) {
	if v, ok := args["product"]; ok {
		id, err := toInt64(v)
		if err != nil {
			return model.ProductSummary{}, fmt.Errorf("product: %w", err)
		}
		for _, p := range h.catalog {
			if p.ID == id {
				return p.Summary(), nil
			}
		}
		return model.ProductSummary{}, fmt.Errorf("product %d is not in the scenario catalog", id)
	}

	name, _ := args["name"].(string)
	id, err := toInt64(args["id"])
	if err != nil {
		return model.ProductSummary{}, fmt.Errorf("id: %w", err)
	}
	price, err := toInt64(args["price"])
	if err != nil {
		return model.ProductSummary{}, fmt.Errorf("price: %w", err)
	}
	return model.ProductSummary{ID: id, Name: name, Price: price}, nil
}

// collectTrace reads the session's journal into result.Trace.
func (h *Harness) collectTrace(ctx context.Context, result *Result) error {
	entries, err := h.journal.ReadSession(ctx, h.session)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	for _, e := range entries {
		args := map[string]any{}
		if err := yaml.Unmarshal([]byte(e.Payload), &args); err != nil {
			return fmt.Errorf("decode journal seq=%d: %w", e.Seq, err)
		}
		result.Trace = append(result.Trace, TraceEvent{
			Seq:          e.Seq,
			Action:       e.Action,
			Args:         args,
			CartTotal:    e.CartTotal,
			CartDistinct: e.CartDistinct,
		})
	}
	return nil
}

// RenderState flattens a snapshot into the tables final_state assertions
// query:
//
//	cart      one row per line item: name, price, count, line_total
//	totals    one row: total, distinct
//	catalog   one row per tracked key: key, status, seq, count, name, reason
//	checkout  one row: submitted, success, error, order_id,
//	          <field>, <field>_valid for every field
func RenderState(s engine.State) map[string][]Row {
	tables := map[string][]Row{
		TableCart:     {},
		TableTotals:   {{"total": cart.Total(s.Cart), "distinct": cart.DistinctCount(s.Cart)}},
		TableCatalog:  {},
		TableCheckout: {},
	}

	for _, item := range cart.Items(s.Cart) {
		tables[TableCart] = append(tables[TableCart], Row{
			"name":       item.Name,
			"price":      item.Price,
			"count":      item.Count,
			"line_total": cart.LineTotal(item),
		})
	}

	for _, k := range s.Catalog.Keys() {
		e := s.Catalog.Entry(k)
		row := Row{
			"key":    string(k),
			"status": e.Status.String(),
			"seq":    e.Seq,
			"count":  len(e.Payload.Products),
			"name":   "",
			"reason": e.Reason,
		}
		if e.Payload.Product != nil {
			row["name"] = e.Payload.Product.Name
		}
		tables[TableCatalog] = append(tables[TableCatalog], row)
	}

	co := Row{
		"submitted": s.Checkout.Submitted,
		"success":   s.Checkout.Success,
		"error":     s.Checkout.Err,
		"order_id":  s.LatestOrderID,
	}
	for _, f := range checkout.Fields {
		fs := s.Checkout.Fields[f]
		co[string(f)] = fs.Value
		co[string(f)+"_valid"] = fs.Valid
	}
	tables[TableCheckout] = append(tables[TableCheckout], co)
	return tables
}
