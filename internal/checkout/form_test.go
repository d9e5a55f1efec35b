package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/model"
)

type recordingSubmitter struct {
	calls []model.CheckoutFormData
	err   error
}

func (r *recordingSubmitter) submit(_ context.Context, data model.CheckoutFormData) error {
	r.calls = append(r.calls, data)
	return r.err
}

func fill(f Form, name, phone, address string) Form {
	return f.Edit(FieldName, name).Edit(FieldPhone, phone).Edit(FieldAddress, address)
}

func TestNewForm(t *testing.T) {
	f := NewForm()
	assert.False(t, f.Submitted)
	assert.False(t, f.Success)
	for _, field := range Fields {
		assert.True(t, f.Fields[field].Valid)
		assert.Empty(t, f.Fields[field].Value)
	}
}

func TestSubmit_InvalidDoesNotCallCollaborator(t *testing.T) {
	rec := &recordingSubmitter{}
	f := fill(NewForm(), " ", "hi", " ")

	got := Submit(context.Background(), f, rec.submit)

	assert.True(t, got.Submitted)
	assert.False(t, got.Success)
	assert.Empty(t, rec.calls)
	for _, field := range Fields {
		assert.False(t, got.Fields[field].Valid, "field %s", field)
	}
}

func TestSubmit_ValidCallsOnce(t *testing.T) {
	rec := &recordingSubmitter{}
	f := fill(NewForm(), "Петр Петрович", "1234567890", "Москва")

	got := Submit(context.Background(), f, rec.submit)

	assert.True(t, got.Submitted)
	assert.True(t, got.Success)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, model.CheckoutFormData{Name: "Петр Петрович", Phone: "1234567890", Address: "Москва"}, rec.calls[0])
}

func TestSubmit_InvalidThenCorrected(t *testing.T) {
	rec := &recordingSubmitter{}
	f := Submit(context.Background(), fill(NewForm(), " ", "hi", " "), rec.submit)
	require.False(t, f.Success)

	// Editing alone keeps the invalid flags until the next submit.
	f = fill(f, "Петр Петрович", "1234567890", "Москва")
	assert.False(t, f.Fields[FieldPhone].Valid)

	f = Submit(context.Background(), f, rec.submit)
	assert.True(t, f.Success)
	for _, field := range Fields {
		assert.True(t, f.Fields[field].Valid, "field %s", field)
	}
	assert.Len(t, rec.calls, 1)
}

func TestSubmit_CollaboratorError(t *testing.T) {
	rec := &recordingSubmitter{err: errors.New("checkout unavailable")}
	f := fill(NewForm(), "Ann", "1234567890", "Москва")

	got := Submit(context.Background(), f, rec.submit)

	assert.True(t, got.Submitted)
	assert.False(t, got.Success)
	assert.Equal(t, "checkout unavailable", got.Err)
	assert.Len(t, rec.calls, 1)
}

func TestSubmit_DoesNotMutateInput(t *testing.T) {
	f := fill(NewForm(), " ", "hi", " ")
	_ = Submit(context.Background(), f, nil)

	assert.False(t, f.Submitted)
	assert.True(t, f.Fields[FieldName].Valid)
}

func TestSubmit_NilSubmitter(t *testing.T) {
	got := Submit(context.Background(), fill(NewForm(), "Ann", "1234567890", "Москва"), nil)
	assert.True(t, got.Success)
}

func TestEdit_ZeroValueForm(t *testing.T) {
	var f Form
	f = f.Edit(FieldName, "Ann")
	assert.Equal(t, "Ann", f.Data().Name)
	assert.True(t, f.Fields[FieldPhone].Valid)
}
