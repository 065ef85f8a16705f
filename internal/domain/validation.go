package domain

import (
	"errors"

	"github.com/bluehaven/rentals/pkg/validator"

	playground "github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *playground.Validate {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations adds the listing specific tags to v.
func RegisterValidations(v *playground.Validate) error {
	return errors.Join(
		v.RegisterValidation("category", validator.OneOf(Categories...)),
		v.RegisterValidation("forwhom", validator.OneOf(ForWhoms...)),
		v.RegisterValidation("district", validator.OneOf(Districts...)),
		v.RegisterValidation("role", func(fl playground.FieldLevel) bool {
			return Role(fl.Field().String()).Valid()
		}),
	)
}

// Validate runs struct tag validation and reports failures as validation errors.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		return NewFieldValidationError(err)
	}
	return nil
}
