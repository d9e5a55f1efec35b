package engine

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/model"
)

// Journal receives one entry per applied transition. *journal.Journal
// implements it.
type Journal interface {
	Append(ctx context.Context, e journal.Entry) error
}

// OrderPlacer submits a checkout together with the cart and returns the id
// the backend assigned. *api.Client implements it.
type OrderPlacer interface {
	Checkout(ctx context.Context, form model.CheckoutFormData, items []model.CartLineItem) (int64, error)
}

// Engine is the single-writer state container.
//
// Thread-safety model:
//   - Dispatch(), GetState(), Subscribe(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - subscribers are called from the Run goroutine, in subscription order
//
// INVARIANTS:
//   - the state tree is only replaced by the Run goroutine
//   - every snapshot handed out is immutable
//   - a transition is fully applied before the next one starts
type Engine struct {
	fetcher catalog.Fetcher
	submit  checkout.Submitter
	placer  OrderPlacer
	journal Journal
	clock   *Clock
	session string
	queue   *actionQueue

	// fetches run on their own goroutines; stopped with the engine
	fetchCtx    context.Context
	cancelFetch context.CancelFunc
	fetches     sync.WaitGroup

	mu        sync.RWMutex
	state     State
	subs      map[int]func(State)
	subOrder  []int
	nextSubID int
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithSubmitter sets the checkout submission collaborator.
func WithSubmitter(s checkout.Submitter) EngineOption {
	return func(e *Engine) {
		e.submit = s
	}
}

// WithOrderPlacer submits checkouts through p instead of the submitter. A
// placed order records its id in State.LatestOrderID.
func WithOrderPlacer(p OrderPlacer) EngineOption {
	return func(e *Engine) {
		e.placer = p
	}
}

// WithJournal records every applied transition in j.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithClock replaces the logical clock, e.g. to continue a journaled session.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSessionGenerator sets the generator of the journal session id.
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) EngineOption {
	return func(e *Engine) {
		e.session = g.Generate()
	}
}

// New creates an Engine that loads catalog resources through fetcher.
//
// The engine does nothing until Run is started.
func New(fetcher catalog.Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher: fetcher,
		clock:   NewClock(),
		queue:   newActionQueue(),
		state:   initialState(),
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == "" {
		e.session = UUIDv7Generator{}.Generate()
	}
	e.state.Seq = e.clock.Current()
	e.fetchCtx, e.cancelFetch = context.WithCancel(context.Background())
	return e
}

// Session returns the id stamped on this engine's journal entries.
func (e *Engine) Session() string {
	return e.session
}

// GetState returns the latest snapshot.
func (e *Engine) GetState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Subscribe registers fn to be called with the new snapshot after every
// applied transition. No-op requests and discarded stale responses do not
// notify. The returned function unsubscribes and may be called repeatedly.
//
// fn runs on the Run goroutine: it must not call Dispatch synchronously.
func (e *Engine) Subscribe(fn func(State)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subs[id] = fn
	e.subOrder = append(e.subOrder, id)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			e.subOrder = slices.DeleteFunc(e.subOrder, func(v int) bool { return v == id })
		})
	}
}

// Dispatch enqueues a and waits until the Run loop has applied it.
//
// Returns the snapshot after a was applied (the unchanged snapshot for a
// no-op), an *ActionError if a was rejected, ErrStopped if the engine stopped
// first, or ctx's error. A RequestCatalog returns as soon as the fetch has
// started; watch the state for its completion.
func (e *Engine) Dispatch(ctx context.Context, a Action) (State, error) {
	if a == nil {
		return State{}, errors.New("dispatch: nil action")
	}
	reply := make(chan result, 1)
	if !e.queue.Enqueue(event{action: a, reply: reply}) {
		return State{}, ErrStopped
	}
	select {
	case r := <-reply:
		return r.state, r.err
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Run starts the single-writer loop.
// Blocks until ctx is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: journal failures are logged and processing continues; the
// journal is diagnostics and never blocks a state change.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "session", e.session)
	defer e.shutdown()

	for {
		ev, ok := e.queue.TryDequeue()
		if ok {
			e.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed once the queue is closed.
			if e.queue.Len() == 0 && e.queue.Closed() {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop shuts the engine down. Run returns once the actions already queued
// have been applied.
func (e *Engine) Stop() {
	e.queue.Close()
}

// shutdown cancels outstanding fetches and fails every waiter still queued.
func (e *Engine) shutdown() {
	e.cancelFetch()
	for _, ev := range e.queue.Drain() {
		if ev.reply != nil {
			ev.reply <- result{err: ErrStopped}
		}
	}
	e.fetches.Wait()
}

// process applies one event and answers its dispatcher.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) process(ctx context.Context, ev event) {
	prev := e.GetState()
	next, changed, err := e.apply(ctx, prev, ev.action)
	if err != nil {
		logActionError(ev.action, err)
		if ev.reply != nil {
			ev.reply <- result{state: prev, err: err}
		}
		return
	}

	if changed {
		next.Seq = e.clock.Next()
		if rc, ok := ev.action.(RequestCatalog); ok {
			// The request seq is the seq of the transition that began it.
			next.Catalog, _ = prev.Catalog.Begin(rc.Key, next.Seq)
			e.startFetch(rc.Key, next.Seq)
		}
		e.commit(next)
		e.record(ctx, ev.action, next)
		e.notify(next)
	}

	if ev.reply != nil {
		ev.reply <- result{state: next}
	}
}

// apply computes the state after a. changed is false for no-ops and stale
// completions. Catalog Begin is finished by process once the seq is known.
func (e *Engine) apply(ctx context.Context, s State, a Action) (State, bool, error) {
	switch act := a.(type) {
	case AddToCart:
		if err := act.Product.Validate(); err != nil {
			return s, false, newActionError(ErrCodeInvalidProduct, a, "%v", err)
		}
		s.Cart = cart.AddItem(s.Cart, act.Product)
		return s, true, nil

	case ClearCart:
		s.Cart = cart.Clear(s.Cart)
		return s, true, nil

	case RequestCatalog:
		if !act.Key.Valid() {
			return s, false, newActionError(ErrCodeInvalidKey, a, "unknown catalog resource %q", act.Key)
		}
		if _, started := s.Catalog.Begin(act.Key, 0); !started {
			slog.Debug("catalog request coalesced", "key", act.Key, "seq", s.Catalog.Entry(act.Key).Seq)
			return s, false, nil
		}
		return s, true, nil

	case ResetCatalog:
		if !act.Key.Valid() {
			return s, false, newActionError(ErrCodeInvalidKey, a, "unknown catalog resource %q", act.Key)
		}
		s.Catalog = s.Catalog.Reset(act.Key)
		return s, true, nil

	case fetchCompleted:
		return e.applyFetch(s, act)

	case EditCheckout:
		if !slices.Contains(checkout.Fields, act.Field) {
			return s, false, newActionError(ErrCodeInvalidField, a, "unknown checkout field %q", act.Field)
		}
		s.Checkout = s.Checkout.Edit(act.Field, act.Value)
		return s, true, nil

	case SubmitCheckout:
		if act.Data != nil {
			s.Checkout = s.Checkout.
				Edit(checkout.FieldName, act.Data.Name).
				Edit(checkout.FieldPhone, act.Data.Phone).
				Edit(checkout.FieldAddress, act.Data.Address)
		}
		return e.applySubmit(ctx, s), true, nil

	case ResetCheckout:
		s.Checkout = checkout.NewForm()
		return s, true, nil

	default:
		return s, false, newActionError(ErrCodeUnknownAction, a, "unhandled action %T", a)
	}
}

func (e *Engine) applyFetch(s State, fc fetchCompleted) (State, bool, error) {
	var (
		next catalog.State
		err  error
	)
	if fc.Err != nil {
		next, err = s.Catalog.Reject(fc.Key, fc.Seq, fc.Err.Error())
	} else {
		next, err = s.Catalog.Resolve(fc.Key, fc.Seq, fc.Payload)
	}
	if errors.Is(err, catalog.ErrStaleResponse) {
		slog.Debug("discarding stale catalog response", "key", fc.Key, "request_seq", fc.Seq, "error", err)
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	if fc.Err != nil {
		slog.Warn("catalog fetch failed", "key", fc.Key, "request_seq", fc.Seq, "error", fc.Err)
	}
	s.Catalog = next
	return s, true, nil
}

// applySubmit runs the checkout submission. The collaborator is awaited
// inside the transition, so no other action observes a half-submitted form.
func (e *Engine) applySubmit(ctx context.Context, s State) State {
	submit := e.submit
	var orderID int64
	if e.placer != nil {
		items := cart.Items(s.Cart)
		submit = func(ctx context.Context, data model.CheckoutFormData) error {
			id, err := e.placer.Checkout(ctx, data, items)
			if err != nil {
				return err
			}
			orderID = id
			return nil
		}
	}

	s.Checkout = checkout.Submit(ctx, s.Checkout, submit)
	if s.Checkout.Success {
		s.Cart = cart.Clear(s.Cart)
		if orderID != 0 {
			s.LatestOrderID = orderID
		}
		slog.Info("checkout accepted", "order_id", orderID)
	} else if s.Checkout.Err != "" {
		slog.Warn("checkout submission failed", "error", s.Checkout.Err)
	}
	return s
}

// startFetch loads k on its own goroutine and feeds the result back through
// the queue, tagged with the request seq.
func (e *Engine) startFetch(k catalog.Key, seq int64) {
	e.fetches.Add(1)
	go func() {
		defer e.fetches.Done()
		payload, err := catalog.Fetch(e.fetchCtx, e.fetcher, k)
		if e.fetchCtx.Err() != nil {
			return
		}
		e.queue.Enqueue(event{action: fetchCompleted{Key: k, Seq: seq, Payload: payload, Err: err}})
	}()
}

func (e *Engine) commit(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// record journals a transition. Failures are logged only.
func (e *Engine) record(ctx context.Context, a Action, s State) {
	if e.journal == nil {
		return
	}

	payload := "{}"
	if args := a.args(s); args != nil {
		b, err := model.MarshalCanonical(args)
		if err != nil {
			slog.Error("journal payload encoding failed", "action", a.Name(), "seq", s.Seq, "error", err)
			return
		}
		payload = string(b)
	}

	err := e.journal.Append(ctx, journal.Entry{
		Session:      e.session,
		Seq:          s.Seq,
		Action:       a.Name(),
		Payload:      payload,
		CartTotal:    cart.Total(s.Cart),
		CartDistinct: cart.DistinctCount(s.Cart),
	})
	if err != nil {
		slog.Error("journal append failed", "action", a.Name(), "seq", s.Seq, "session", e.session, "error", err)
	}
}

// notify calls every subscriber with s, in subscription order.
func (e *Engine) notify(s State) {
	e.mu.RLock()
	fns := make([]func(State), 0, len(e.subOrder))
	for _, id := range e.subOrder {
		fns = append(fns, e.subs[id])
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		fn(s)
	}
}

func logActionError(a Action, err error) {
	slog.Warn("action rejected", "action", a.Name(), "error", err)
}

// AddToCart dispatches AddToCart for p.
func (e *Engine) AddToCart(ctx context.Context, p model.ProductSummary) (State, error) {
	return e.Dispatch(ctx, AddToCart{Product: p})
}

// ClearCart dispatches ClearCart.
func (e *Engine) ClearCart(ctx context.Context) (State, error) {
	return e.Dispatch(ctx, ClearCart{})
}

// RequestCatalog dispatches RequestCatalog for the product listing.
func (e *Engine) RequestCatalog(ctx context.Context) (State, error) {
	return e.Dispatch(ctx, RequestCatalog{Key: catalog.ListKey})
}

// RequestProduct dispatches RequestCatalog for the details of product id.
func (e *Engine) RequestProduct(ctx context.Context, id int64) (State, error) {
	return e.Dispatch(ctx, RequestCatalog{Key: catalog.ProductKey(id)})
}

// SubmitCheckout fills the form with data and submits it as one action, so
// concurrent edits cannot land between the fill and the submission.
func (e *Engine) SubmitCheckout(ctx context.Context, data model.CheckoutFormData) (State, error) {
	return e.Dispatch(ctx, SubmitCheckout{Data: &data})
}
