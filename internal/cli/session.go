package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/journal"
)

// DefaultTimeout bounds a whole command run against the backend.
const DefaultTimeout = 10 * time.Second

// storeSession is a running engine wired to the configured backend and
// journal. Close it to stop the engine and flush the journal.
type storeSession struct {
	engine  *engine.Engine
	client  *api.Client
	journal *journal.Journal

	cancel context.CancelFunc
	done   chan error
}

// openSession starts an engine against opts.Config. The engine uses the
// HTTP client both as catalog fetcher and as order placer.
func openSession(opts *RootOptions) (*storeSession, error) {
	cfg := opts.Config
	path := cfg.JournalPath
	if path == "" {
		path = journal.MemoryPath
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}

	client := api.NewClient(cfg.BaseURL, cfg.Basename)
	eng := engine.New(client,
		engine.WithOrderPlacer(client),
		engine.WithJournal(j),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &storeSession{
		engine:  eng,
		client:  client,
		journal: j,
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() {
		s.done <- eng.Run(ctx)
	}()

	slog.Debug("session started", "session", eng.Session(), "base_url", cfg.BaseURL, "journal", path)
	return s, nil
}

// Close stops the engine and closes the journal.
func (s *storeSession) Close() {
	s.engine.Stop()
	if err := <-s.done; err != nil {
		slog.Error("engine stopped with error", "error", err)
	}
	s.cancel()
	if err := s.journal.Close(); err != nil {
		slog.Error("error closing journal", "error", err)
	}
}

// load requests k and waits until it settles. A Failed entry is returned
// as an error carrying the fetch reason.
func (s *storeSession) load(ctx context.Context, k catalog.Key) (catalog.Entry, error) {
	settled := make(chan catalog.Entry, 1)
	unsubscribe := s.engine.Subscribe(func(st engine.State) {
		e := st.Catalog.Entry(k)
		if e.Status == catalog.StatusLoading || e.Status == catalog.StatusIdle {
			return
		}
		select {
		case settled <- e:
		default:
		}
	})
	defer unsubscribe()

	st, err := s.engine.Dispatch(ctx, engine.RequestCatalog{Key: k})
	if err != nil {
		return catalog.Entry{}, err
	}

	e := st.Catalog.Entry(k)
	if e.Status == catalog.StatusLoading {
		select {
		case e = <-settled:
		case <-ctx.Done():
			return catalog.Entry{}, fmt.Errorf("waiting for %s: %w", k, ctx.Err())
		}
	}
	if e.Status == catalog.StatusFailed {
		return e, fmt.Errorf("load %s: %s", k, e.Reason)
	}
	return e, nil
}
