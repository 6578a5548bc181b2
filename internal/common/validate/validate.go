package validate

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New returns a validator that understands decimal amounts, so tags such as
// gt=0 apply to prices sent as strings.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterCustomTypeFunc(DecimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	_ = validate.RegisterValidation("price", ValidatePrice)
	return validate
}

// ValidatePrice accepts a non-negative decimal string.
func ValidatePrice(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

func DecimalValue(v reflect.Value) interface{} {
	switch n := v.Interface().(type) {
	case decimal.Decimal:
		f, _ := n.Float64()
		return f
	case decimal.NullDecimal:
		if !n.Valid {
			return nil
		}
		f, _ := n.Decimal.Float64()
		return f
	}
	return nil
}
