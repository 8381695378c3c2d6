package domain

import (
	"fmt"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Amount is an immutable monetary value held as an exact count of minor
// currency units (e.g. cents). The exponent records how many minor-unit
// digits the owning currency has, so String can render the canonical
// fixed-point form. No floating point is ever involved; balance checks
// compare amounts exactly.
type Amount struct {
	units decimal.Decimal // integral count of minor units
	exp   int32           // minor-unit digits of the currency
}

// NewAmount parses a fixed-point decimal string into an Amount for a
// currency with the given number of minor-unit digits. It fails with
// ErrInvalidAmount when the string is not a valid decimal or carries more
// fractional digits than the currency supports.
func NewAmount(value string, exponent int32) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q is not a valid decimal", apperrors.ErrInvalidAmount, value)
	}
	units := d.Shift(exponent)
	if !units.IsInteger() {
		return Amount{}, fmt.Errorf("%w: %q has more than %d decimal places", apperrors.ErrInvalidAmount, value, exponent)
	}
	return Amount{units: units, exp: exponent}, nil
}

// AmountFromPersistence restores an Amount from its stored canonical string.
// Stored data is trusted, so exceeding fractional digits are not re-checked;
// a string that is not a decimal at all still fails.
func AmountFromPersistence(value string, exponent int32) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: stored amount %q is not a valid decimal", apperrors.ErrInvalidAmount, value)
	}
	return Amount{units: d.Shift(exponent), exp: exponent}, nil
}

// AmountFromDecimal builds an Amount from an exact decimal value.
func AmountFromDecimal(d decimal.Decimal, exponent int32) (Amount, error) {
	units := d.Shift(exponent)
	if !units.IsInteger() {
		return Amount{}, fmt.Errorf("%w: %s has more than %d decimal places", apperrors.ErrInvalidAmount, d.String(), exponent)
	}
	return Amount{units: units, exp: exponent}, nil
}

// ZeroAmount returns the zero value for a currency with the given exponent.
func ZeroAmount(exponent int32) Amount {
	return Amount{units: decimal.Zero, exp: exponent}
}

// Add returns a + b. Mixing amounts of different minor-unit exponents is a
// programming error and is rejected rather than silently rescaled.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.exp != b.exp {
		return Amount{}, fmt.Errorf("%w: cannot add amounts with exponents %d and %d", apperrors.ErrInvalidAmount, a.exp, b.exp)
	}
	return Amount{units: a.units.Add(b.units), exp: a.exp}, nil
}

// Sub returns a - b, with the same exponent rule as Add.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.exp != b.exp {
		return Amount{}, fmt.Errorf("%w: cannot subtract amounts with exponents %d and %d", apperrors.ErrInvalidAmount, a.exp, b.exp)
	}
	return Amount{units: a.units.Sub(b.units), exp: a.exp}, nil
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{units: a.units.Neg(), exp: a.exp}
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.units.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.units.IsPositive() }

// IsNegative reports whether the amount is strictly less than zero.
func (a Amount) IsNegative() bool { return a.units.IsNegative() }

// Equal reports value equality, including the exponent.
func (a Amount) Equal(b Amount) bool {
	return a.exp == b.exp && a.units.Equal(b.units)
}

// Exponent returns the number of minor-unit digits of the owning currency.
func (a Amount) Exponent() int32 { return a.exp }

// MinorUnits returns the integral count of minor units.
func (a Amount) MinorUnits() decimal.Decimal { return a.units }

// Decimal returns the amount as an exact decimal in major units.
func (a Amount) Decimal() decimal.Decimal { return a.units.Shift(-a.exp) }

// String renders the canonical fixed-point form, e.g. "100.50" for a
// two-digit currency. This is also the persistence representation.
func (a Amount) String() string {
	return a.units.Shift(-a.exp).StringFixed(a.exp)
}
