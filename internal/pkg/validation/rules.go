// Package validation registers the custom binding tags request DTOs use.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Tag names
const (
	// TagNotBlank rejects strings that are empty after trimming whitespace
	TagNotBlank = "notblank"
	// TagCurrency accepts three-letter ISO 4217 style codes in either case
	TagCurrency = "currency"
)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Register installs the custom tags on v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagNotBlank: notBlank,
		TagCurrency: currency,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the custom tags on gin's default validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

func notBlank(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && strings.TrimSpace(s) != ""
}

func currency(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && currencyPattern.MatchString(s)
}

// stringValue reads string and *string fields; the validator dereferences pointers for us
func stringValue(fl validator.FieldLevel) (string, bool) {
	field := fl.Field()
	if field.Kind().String() != "string" {
		return "", false
	}
	return field.String(), true
}
