package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
)

func TestCreateAccount_Validation(t *testing.T) {
	userID := domain.NewEntityID()

	_, err := domain.CreateAccount(domain.NewAccountParams{
		UserID:         userID,
		Name:           "",
		CurrencyCode:   domain.USD,
		AccountType:    domain.Asset,
		InitialBalance: domain.ZeroAmount(2),
	}, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.CreateAccount(domain.NewAccountParams{
		UserID:         userID,
		Name:           "Sneaky",
		CurrencyCode:   domain.USD,
		AccountType:    domain.CurrencyTrading,
		InitialBalance: domain.ZeroAmount(2),
	}, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "users cannot create currency-trading accounts")

	// Initial balance exponent has to match the currency.
	jpyBalance, err := domain.NewAmount("100", 0)
	require.NoError(t, err)
	_, err = domain.CreateAccount(domain.NewAccountParams{
		UserID:         userID,
		Name:           "Wallet",
		CurrencyCode:   domain.USD,
		AccountType:    domain.Asset,
		InitialBalance: jpyBalance,
	}, testNow)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestNewSystemAccount(t *testing.T) {
	userID := domain.NewEntityID()

	sys := domain.NewSystemAccount(userID, domain.EUR, testNow)
	assert.Equal(t, "EUR trading", sys.Name)
	assert.Equal(t, domain.CurrencyTrading, sys.AccountType)
	assert.Equal(t, domain.EUR, sys.CurrencyCode)
	assert.True(t, sys.IsSystem())
	assert.True(t, sys.InitialBalance.IsZero())

	// Each call allocates a fresh id so the save retry can rebuild.
	other := domain.NewSystemAccount(userID, domain.EUR, testNow)
	assert.NotEqual(t, sys.AccountID, other.AccountID)
}

func TestAccount_UpdateDetails(t *testing.T) {
	userID := domain.NewEntityID()
	account := newTestAccount(t, userID, domain.USD)

	name := "Renamed"
	updated, err := account.UpdateDetails(&name, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, account.Description, updated.Description)

	empty := ""
	_, err = account.UpdateDetails(&empty, nil, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	deleted, err := account.MarkDeleted(testNow)
	require.NoError(t, err)
	_, err = deleted.UpdateDetails(&name, nil, testNow)
	assert.ErrorIs(t, err, apperrors.ErrEntityDeleted)
}

func TestNewCurrencyCode(t *testing.T) {
	code, err := domain.NewCurrencyCode(" usd ")
	require.NoError(t, err)
	assert.Equal(t, domain.USD, code)

	_, err = domain.NewCurrencyCode("XXX")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCurrency)
}

func TestCurrencyRegistry_MinorUnitDigits(t *testing.T) {
	assert.Equal(t, int32(2), domain.USD.MinorUnitDigits())
	assert.Equal(t, int32(0), domain.JPY.MinorUnitDigits())
	assert.NotEmpty(t, domain.SupportedCurrencies())
}
