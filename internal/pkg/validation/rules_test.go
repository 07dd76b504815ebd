package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title    string  `validate:"required,notblank"`
	Notes    *string `validate:"omitempty,notblank"`
	Currency string  `validate:"omitempty,currency"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	blank := "   "
	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{"plain title", sample{Title: "Visit campus"}, true},
		{"whitespace title", sample{Title: " \t "}, false},
		{"blank notes pointer", sample{Title: "x", Notes: &blank}, false},
		{"lowercase currency", sample{Title: "x", Currency: "usd"}, true},
		{"uppercase currency", sample{Title: "x", Currency: "EUR"}, true},
		{"long currency", sample{Title: "x", Currency: "dollars"}, false},
		{"numeric currency", sample{Title: "x", Currency: "840"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterWithGin(t *testing.T) {
	assert.NoError(t, RegisterWithGin())
}
