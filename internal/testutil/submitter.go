package testutil

import (
	"context"
	"sync"

	"github.com/roach88/storefront/internal/model"
)

// RecordingSubmitter records every checkout submission.
type RecordingSubmitter struct {
	mu    sync.Mutex
	calls []model.CheckoutFormData
	err   error
}

// Fail makes subsequent submissions return err.
func (r *RecordingSubmitter) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Submit matches checkout.Submitter.
func (r *RecordingSubmitter) Submit(_ context.Context, data model.CheckoutFormData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, data)
	return r.err
}

// Calls returns a copy of the recorded submissions.
func (r *RecordingSubmitter) Calls() []model.CheckoutFormData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.CheckoutFormData(nil), r.calls...)
}
