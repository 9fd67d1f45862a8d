// Package validate holds the shared go-playground validator for the
// inventory. Store column rules and service form rules both go through it, so
// custom tags are registered once.
//
// Extra tags on top of the built-in ones:
//
//	notblank    string must contain something other than whitespace
//
// Example:
//
//	type Form struct {
//	    Name  string `validate:"notblank"`
//	    Price string `validate:"required,max=9"`
//	}
package validate

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Failure is one failed rule.
type Failure struct {
	Field string
	Tag   string
}

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", notBlank)
	return v
})

// Var validates a single value against tag.
func Var(field any, tag string) error {
	return instance().Var(field, tag)
}

// Struct validates s by its `validate` tags.
func Struct(s any) error {
	return instance().Struct(s)
}

// Failures flattens a validation error into its failed rules, in field
// order. Errors that are not validation errors yield nil.
func Failures(err error) []Failure {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]Failure, len(verrs))
	for i, fe := range verrs {
		out[i] = Failure{Field: fe.Field(), Tag: fe.Tag()}
	}
	return out
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
