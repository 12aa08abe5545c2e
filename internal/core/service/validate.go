package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
)

var validate = validator.New()

// checkStruct runs the struct tags of v and converts the first failure into a
// domain.ValidationError.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &domain.ValidationError{Field: strings.ToLower(fe.Field()), Reason: reason(fe)}
	}
	return &domain.ValidationError{Reason: err.Error()}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

func checkPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}
