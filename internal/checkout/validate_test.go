package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/storefront/internal/model"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{" ", false},
		{"\t\n ", false},
		{"Петр Петрович", true},
		{"  x  ", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateName(tt.value), "name %q", tt.value)
		assert.Equal(t, tt.want, ValidateAddress(tt.value), "address %q", tt.value)
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1234567890", true},
		{"0000000000", true},
		{"hi", false},
		{"", false},
		{"123456789", false},
		{"12345678901", false},
		{"12345 7890", false},
		{"+123456789", false},
		{"١٢٣٤٥٦٧٨٩٠", false}, // non-ASCII digits
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidatePhone(tt.value), "phone %q", tt.value)
	}
}

func TestValidate_UnknownField(t *testing.T) {
	assert.False(t, Validate(Field("email"), "a@b.c"))
	assert.True(t, Validate(FieldPhone, "1234567890"))
}

func TestValidateForm_AllInvalid(t *testing.T) {
	r := ValidateForm(model.CheckoutFormData{Name: " ", Phone: "hi", Address: " "})

	assert.False(t, r.Valid)
	assert.Equal(t, []Field{FieldName, FieldPhone, FieldAddress}, r.Invalid())
}

func TestValidateForm_AllValid(t *testing.T) {
	r := ValidateForm(model.CheckoutFormData{Name: "Петр Петрович", Phone: "1234567890", Address: "Москва"})

	assert.True(t, r.Valid)
	assert.Empty(t, r.Invalid())
	for _, f := range Fields {
		assert.True(t, r.Fields[f], "field %s", f)
	}
}

func TestValidateForm_OneInvalid(t *testing.T) {
	r := ValidateForm(model.CheckoutFormData{Name: "Ann", Phone: "123", Address: "Москва"})

	assert.False(t, r.Valid)
	assert.Equal(t, []Field{FieldPhone}, r.Invalid())
}
