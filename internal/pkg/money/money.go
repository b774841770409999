// Package money holds the currency arithmetic shared by invoicing and the ledger.
// Amounts are decimal values with two fractional digits; floats are never used.
package money

import (
	"time"

	"github.com/shopspring/decimal"
)

// Places is the currency precision.
const Places = 2

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Round rounds to currency precision, half away from zero. For the non-negative
// amounts produced by billing this is round-half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Hours converts a duration into fractional hours, to the nanosecond.
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Nanoseconds()).Div(nanosPerHour)
}

// Charge prices a duration at an hourly rate, rounded to currency precision.
// The product is formed before dividing so that e.g. 20 minutes at 9.00 is exactly 3.00.
func Charge(d time.Duration, hourlyRate decimal.Decimal) decimal.Decimal {
	nanos := decimal.NewFromInt(d.Nanoseconds())
	return Round(hourlyRate.Mul(nanos).Div(nanosPerHour))
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Parse parses a decimal string such as "40.00".
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
