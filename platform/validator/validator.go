// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the application's custom tags
// registered. The "region" tag accepts region codes known to libphonenumber.
func New() *Validator {
	v := validator.New()
	if err := v.RegisterValidation("region", isSupportedRegion); err != nil {
		panic("failed to register region validation: " + err.Error())
	}
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

func isSupportedRegion(fl validator.FieldLevel) bool {
	region := strings.ToUpper(fl.Field().String())
	return phonenumbers.GetSupportedRegions()[region]
}
