package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
)

func TestNewAmount_Valid(t *testing.T) {
	a, err := domain.NewAmount("100.50", 2)
	require.NoError(t, err)
	assert.Equal(t, "100.50", a.String())
	assert.Equal(t, int32(2), a.Exponent())
	assert.True(t, a.MinorUnits().Equal(decimal.NewFromInt(10050)))
}

func TestNewAmount_WholeNumberGetsCanonicalForm(t *testing.T) {
	a, err := domain.NewAmount("7", 2)
	require.NoError(t, err)
	assert.Equal(t, "7.00", a.String())
}

func TestNewAmount_ZeroExponentCurrency(t *testing.T) {
	a, err := domain.NewAmount("150", 0)
	require.NoError(t, err)
	assert.Equal(t, "150", a.String())

	_, err = domain.NewAmount("150.5", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestNewAmount_TooManyFractionDigits(t *testing.T) {
	_, err := domain.NewAmount("1.555", 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestNewAmount_NotADecimal(t *testing.T) {
	_, err := domain.NewAmount("ten dollars", 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestAmount_NegativeValues(t *testing.T) {
	a, err := domain.NewAmount("-42.10", 2)
	require.NoError(t, err)
	assert.True(t, a.IsNegative())
	assert.Equal(t, "-42.10", a.String())
	assert.Equal(t, "42.10", a.Neg().String())
}

func TestAmount_AddSub(t *testing.T) {
	a, err := domain.NewAmount("10.10", 2)
	require.NoError(t, err)
	b, err := domain.NewAmount("0.90", 2)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "11.00", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "9.20", diff.String())
}

func TestAmount_ExponentMismatchRejected(t *testing.T) {
	usd, err := domain.NewAmount("10.00", 2)
	require.NoError(t, err)
	jpy, err := domain.NewAmount("10", 0)
	require.NoError(t, err)

	_, err = usd.Add(jpy)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	_, err = usd.Sub(jpy)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestAmount_PersistenceRoundTrip(t *testing.T) {
	a, err := domain.NewAmount("12345.67", 2)
	require.NoError(t, err)

	restored, err := domain.AmountFromPersistence(a.String(), a.Exponent())
	require.NoError(t, err)
	assert.True(t, a.Equal(restored))
}

func TestAmount_ZeroChecks(t *testing.T) {
	zero := domain.ZeroAmount(2)
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
	assert.Equal(t, "0.00", zero.String())
}

func TestAmount_ExactnessAtScale(t *testing.T) {
	// Classic float trap: 0.1 + 0.2. Minor-unit integers keep it exact.
	a, err := domain.NewAmount("0.10", 2)
	require.NoError(t, err)
	b, err := domain.NewAmount("0.20", 2)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	expected, err := domain.NewAmount("0.30", 2)
	require.NoError(t, err)
	assert.True(t, sum.Equal(expected))
}
