package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// lookupFunc reads one variable; os.LookupEnv in production
type lookupFunc func(key string) (string, bool)

// applyEnv overrides every field carrying an `env` tag whose variable is set.
// It returns the keys it applied in struct order, and every parse failure joined.
func applyEnv(target interface{}, lookup lookupFunc) ([]string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	root := reflect.ValueOf(target)
	if root.Kind() != reflect.Ptr || root.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("env target must be a struct pointer, got %T", target)
	}

	var applied []string
	var errs []error
	var walk func(v reflect.Value)
	walk = func(v reflect.Value) {
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if field.Kind() == reflect.Struct {
				walk(field)
				continue
			}

			key := v.Type().Field(i).Tag.Get("env")
			if key == "" {
				continue
			}
			raw, ok := lookup(key)
			if !ok {
				continue
			}
			if err := setFromString(field, strings.TrimSpace(raw)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			applied = append(applied, key)
		}
	}
	walk(root.Elem())

	return applied, errors.Join(errs...)
}

// setFromString covers the kinds Config uses: strings, integers and booleans.
// Durations stay strings in Config and are parsed by validateConfig.
func setFromString(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", value)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
