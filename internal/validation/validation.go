// Package validation checks the `binding` struct tags of request inputs with
// the same validator engine gin uses, so a service called directly enforces
// the rules a handler would.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"fleetops/internal/apperr"
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}()

// Register adds the custom rules to v. Gin's engine gets the same rules so
// handler binding and service validation agree.
func Register(v *validator.Validate) error {
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Struct validates the tags of v and reports the first failure as an
// apperr.ValidationError.
func Struct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return Translate(err)
	}
	return nil
}

// Translate turns a binding or decoding error into an apperr.ValidationError.
func Translate(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return apperr.ValidationError{Field: fe.Field(), Msg: message(fe), Err: err}
	}
	var ve apperr.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return apperr.ValidationError{Msg: "invalid request body: " + err.Error(), Err: err}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "nefield":
		return "must differ from " + fe.Param()
	case "len":
		return "must have exactly " + fe.Param() + " entries"
	}
	return "failed the " + fe.Tag() + " check"
}
