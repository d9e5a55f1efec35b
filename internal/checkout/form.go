package checkout

import (
	"context"

	"github.com/roach88/storefront/internal/model"
)

// Submitter is the submission collaborator. It is called once per accepted
// submit, only after every field validated.
type Submitter func(ctx context.Context, data model.CheckoutFormData) error

// FieldState is one input's value and the validity recorded at the last
// submit. Valid starts true so a fresh form shows no errors.
type FieldState struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

// Form is the checkout form state. Success is only ever true when every
// field is Valid.
type Form struct {
	Fields    map[Field]FieldState `json:"fields"`
	Submitted bool                 `json:"submitted"`
	Success   bool                 `json:"success"`
	Err       string               `json:"error,omitempty"`
}

// NewForm returns the state of a freshly mounted form.
func NewForm() Form {
	f := Form{Fields: make(map[Field]FieldState, len(Fields))}
	for _, field := range Fields {
		f.Fields[field] = FieldState{Valid: true}
	}
	return f
}

// Data collects the current field values.
func (f Form) Data() model.CheckoutFormData {
	return model.CheckoutFormData{
		Name:    f.Fields[FieldName].Value,
		Phone:   f.Fields[FieldPhone].Value,
		Address: f.Fields[FieldAddress].Value,
	}
}

// Edit sets a field's value. Validity flags are left as they were at the
// last submit; there is no live revalidation.
func (f Form) Edit(field Field, value string) Form {
	next := f.clone()
	fs := next.Fields[field]
	fs.Value = value
	next.Fields[field] = fs
	return next
}

// Submit validates the form and, if every field passes, calls submit once.
//
// Invalid form: Submitted=true, Success=false, per-field flags updated,
// submit not called. Valid form: submit called; on nil error Success=true.
// A submit error leaves Success=false with Err set and every field valid.
// A nil submit is treated as a no-op collaborator.
func Submit(ctx context.Context, f Form, submit Submitter) Form {
	next := f.clone()
	next.Submitted = true
	next.Success = false
	next.Err = ""

	result := ValidateForm(next.Data())
	for _, field := range Fields {
		fs := next.Fields[field]
		fs.Valid = result.Fields[field]
		next.Fields[field] = fs
	}
	if !result.Valid {
		return next
	}

	if submit != nil {
		if err := submit(ctx, next.Data()); err != nil {
			next.Err = err.Error()
			return next
		}
	}
	next.Success = true
	return next
}

func (f Form) clone() Form {
	next := f
	next.Fields = make(map[Field]FieldState, len(Fields))
	for _, field := range Fields {
		fs, ok := f.Fields[field]
		if !ok {
			fs = FieldState{Valid: true}
		}
		next.Fields[field] = fs
	}
	return next
}
