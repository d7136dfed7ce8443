// Package validation wraps go-playground/validator for domain aggregates.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Error carries field-level constraint violations keyed by lowerCamel field name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates s using its `validate` tags.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	return format(err)
}

func format(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &Error{Fields: map[string]string{"error": "invalid value"}}
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := lowerFirst(e.Field())
		switch e.Tag() {
		case "required":
			fields[field] = "This field is required"
		case "min":
			fields[field] = fmt.Sprintf("Must be at least %s characters", e.Param())
		case "max":
			fields[field] = fmt.Sprintf("Must be at most %s characters", e.Param())
		case "gt":
			fields[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		case "gte":
			fields[field] = fmt.Sprintf("Must be at least %s", e.Param())
		default:
			fields[field] = "Invalid value"
		}
	}
	return &Error{Fields: fields}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
