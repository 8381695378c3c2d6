package domain

import (
	"fmt"
	"strings"

	"github.com/gorushkin/ledgerly/internal/apperrors"
)

// CurrencyCode is a validated ISO-4217 currency code.
type CurrencyCode string

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	RUB CurrencyCode = "RUB"
	TRY CurrencyCode = "TRY"
	JPY CurrencyCode = "JPY"
	CNY CurrencyCode = "CNY"
	AMD CurrencyCode = "AMD"
)

// Currency describes a supported currency, including the number of
// minor-unit digits used when parsing amounts for it.
type Currency struct {
	Code            CurrencyCode `json:"code"`
	Symbol          string       `json:"symbol"`
	Name            string       `json:"name"`
	MinorUnitDigits int32        `json:"minorUnitDigits"`
}

// currencies is the fixed registry of supported currencies. Every currency
// is assumed to have a known, fixed count of minor-unit digits.
var currencies = map[CurrencyCode]Currency{
	USD: {Code: USD, Symbol: "$", Name: "US Dollar", MinorUnitDigits: 2},
	EUR: {Code: EUR, Symbol: "€", Name: "Euro", MinorUnitDigits: 2},
	GBP: {Code: GBP, Symbol: "£", Name: "Pound Sterling", MinorUnitDigits: 2},
	RUB: {Code: RUB, Symbol: "₽", Name: "Russian Ruble", MinorUnitDigits: 2},
	TRY: {Code: TRY, Symbol: "₺", Name: "Turkish Lira", MinorUnitDigits: 2},
	JPY: {Code: JPY, Symbol: "¥", Name: "Japanese Yen", MinorUnitDigits: 0},
	CNY: {Code: CNY, Symbol: "¥", Name: "Yuan Renminbi", MinorUnitDigits: 2},
	AMD: {Code: AMD, Symbol: "֏", Name: "Armenian Dram", MinorUnitDigits: 2},
}

// currencyOrder keeps SupportedCurrencies deterministic.
var currencyOrder = []CurrencyCode{USD, EUR, GBP, RUB, TRY, JPY, CNY, AMD}

// NewCurrencyCode validates a raw code against the registry.
func NewCurrencyCode(code string) (CurrencyCode, error) {
	c := CurrencyCode(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := currencies[c]; !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, code)
	}
	return c, nil
}

// Currency returns the registry entry for the code. The zero Currency is
// returned for codes that never went through NewCurrencyCode.
func (c CurrencyCode) Currency() Currency {
	return currencies[c]
}

// MinorUnitDigits returns the minor-unit digit count for the code.
func (c CurrencyCode) MinorUnitDigits() int32 {
	return currencies[c].MinorUnitDigits
}

// String implements fmt.Stringer.
func (c CurrencyCode) String() string { return string(c) }

// SupportedCurrencies lists the registry in a stable order.
func SupportedCurrencies() []Currency {
	out := make([]Currency, 0, len(currencyOrder))
	for _, code := range currencyOrder {
		out = append(out, currencies[code])
	}
	return out
}
