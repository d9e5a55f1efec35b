// Package checkout validates the checkout form and runs its submission
// state machine.
//
// Validation failures are data, never errors: each field carries a Valid
// flag the presentation layer uses to mark it invalid.
package checkout

import (
	"strings"

	"github.com/roach88/storefront/internal/model"
)

// Field names a checkout form input.
type Field string

const (
	FieldName    Field = "name"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldName, FieldPhone, FieldAddress}

// PhoneLength is the exact number of digits a phone number must have.
const PhoneLength = 10

// ValidateName requires something other than whitespace.
func ValidateName(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidatePhone requires exactly PhoneLength ASCII digits and nothing else.
func ValidatePhone(value string) bool {
	if len(value) != PhoneLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateAddress requires something other than whitespace.
func ValidateAddress(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Validate runs the predicate for field.
func Validate(field Field, value string) bool {
	switch field {
	case FieldName:
		return ValidateName(value)
	case FieldPhone:
		return ValidatePhone(value)
	case FieldAddress:
		return ValidateAddress(value)
	default:
		return false
	}
}

// Result is the outcome of ValidateForm.
type Result struct {
	Fields map[Field]bool
	Valid  bool
}

// Invalid returns the invalid fields in display order.
func (r Result) Invalid() []Field {
	var out []Field
	for _, f := range Fields {
		if !r.Fields[f] {
			out = append(out, f)
		}
	}
	return out
}

// ValidateForm checks every field. Valid is true only if all fields are.
func ValidateForm(data model.CheckoutFormData) Result {
	r := Result{
		Fields: map[Field]bool{
			FieldName:    ValidateName(data.Name),
			FieldPhone:   ValidatePhone(data.Phone),
			FieldAddress: ValidateAddress(data.Address),
		},
		Valid: true,
	}
	for _, ok := range r.Fields {
		if !ok {
			r.Valid = false
		}
	}
	return r
}
