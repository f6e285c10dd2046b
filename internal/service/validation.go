package service

import (
	"math"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds the request validator with the domain rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Score weights carry at most two decimals. Rejecting finer precision at
	// the boundary keeps the persisted float and the hundredths-based budget
	// arithmetic in agreement.
	_ = v.RegisterValidation("hundredths", func(fl validator.FieldLevel) bool {
		scaled := fl.Field().Float() * 100
		return math.Abs(scaled-math.Round(scaled)) < 1e-6
	})

	return v
}
