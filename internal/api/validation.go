package api

import (
	"errors"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom binding rules on gin's validator.
// It is safe to call more than once; every call reports the first outcome.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		// Decimals are validated through their string form.
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		registerErr = v.RegisterValidation("money", validateMoney)
	})
	return registerErr
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// validateMoney accepts non-negative amounts with at most two decimal places.
func validateMoney(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := money.Parse(s)
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Equal(money.Round(d))
}
