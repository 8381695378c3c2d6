package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestAccount(t *testing.T, userID domain.EntityID, code domain.CurrencyCode) domain.Account {
	t.Helper()
	account, err := domain.CreateAccount(domain.NewAccountParams{
		UserID:         userID,
		Name:           string(code) + " account",
		CurrencyCode:   code,
		AccountType:    domain.Asset,
		InitialBalance: domain.ZeroAmount(code.MinorUnitDigits()),
	}, testNow)
	require.NoError(t, err)
	return account
}

func mustAmount(t *testing.T, value string, code domain.CurrencyCode) domain.Amount {
	t.Helper()
	a, err := domain.NewAmount(value, code.MinorUnitDigits())
	require.NoError(t, err)
	return a
}

func TestBalanceDrafts_SingleCurrencyBalancedUnchanged(t *testing.T) {
	userID := domain.NewEntityID()
	cash := newTestAccount(t, userID, domain.USD)
	food := newTestAccount(t, userID, domain.USD)

	drafts := []domain.OperationDraft{
		{Account: cash, Amount: mustAmount(t, "-25.00", domain.USD)},
		{Account: food, Amount: mustAmount(t, "25.00", domain.USD)},
	}

	balanced, err := domain.BalanceDrafts(drafts, nil)
	require.NoError(t, err)
	assert.Len(t, balanced, 2, "balanced single-currency entry needs no system postings")
}

func TestBalanceDrafts_CrossCurrencyAddsOneSystemDraftPerCurrency(t *testing.T) {
	userID := domain.NewEntityID()
	usdAccount := newTestAccount(t, userID, domain.USD)
	eurAccount := newTestAccount(t, userID, domain.EUR)

	systemAccounts := map[domain.CurrencyCode]domain.Account{
		domain.USD: domain.NewSystemAccount(userID, domain.USD, testNow),
		domain.EUR: domain.NewSystemAccount(userID, domain.EUR, testNow),
	}

	drafts := []domain.OperationDraft{
		{Account: usdAccount, Amount: mustAmount(t, "-110.00", domain.USD)},
		{Account: eurAccount, Amount: mustAmount(t, "100.00", domain.EUR)},
	}

	balanced, err := domain.BalanceDrafts(drafts, systemAccounts)
	require.NoError(t, err)
	require.Len(t, balanced, 4)

	// System drafts follow the user drafts in first-encountered currency order.
	usdSys := balanced[2]
	eurSys := balanced[3]
	assert.True(t, usdSys.IsSystem)
	assert.Equal(t, "110.00", usdSys.Amount.String())
	assert.Equal(t, "Balancing USD", usdSys.Description)
	assert.Equal(t, systemAccounts[domain.USD].AccountID, usdSys.Account.AccountID)

	assert.True(t, eurSys.IsSystem)
	assert.Equal(t, "-100.00", eurSys.Amount.String())
	assert.Equal(t, "Balancing EUR", eurSys.Description)

	// Every currency nets to zero after balancing.
	entry, err := domain.CreateEntry(userID, domain.NewEntityID(), "exchange", balanced, testNow)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.EntryID)
}

func TestBalanceDrafts_ThreeCurrencies(t *testing.T) {
	userID := domain.NewEntityID()
	usdAccount := newTestAccount(t, userID, domain.USD)
	eurAccount := newTestAccount(t, userID, domain.EUR)
	gbpAccount := newTestAccount(t, userID, domain.GBP)

	systemAccounts := map[domain.CurrencyCode]domain.Account{
		domain.USD: domain.NewSystemAccount(userID, domain.USD, testNow),
		domain.EUR: domain.NewSystemAccount(userID, domain.EUR, testNow),
		domain.GBP: domain.NewSystemAccount(userID, domain.GBP, testNow),
	}

	drafts := []domain.OperationDraft{
		{Account: usdAccount, Amount: mustAmount(t, "-200.00", domain.USD)},
		{Account: eurAccount, Amount: mustAmount(t, "90.00", domain.EUR)},
		{Account: gbpAccount, Amount: mustAmount(t, "80.00", domain.GBP)},
	}

	balanced, err := domain.BalanceDrafts(drafts, systemAccounts)
	require.NoError(t, err)
	require.Len(t, balanced, 6, "one balancing draft per unbalanced currency")

	assert.Equal(t, "200.00", balanced[3].Amount.String())
	assert.Equal(t, "-90.00", balanced[4].Amount.String())
	assert.Equal(t, "-80.00", balanced[5].Amount.String())
	for _, d := range balanced[3:] {
		assert.True(t, d.IsSystem)
	}
}

func TestBalanceDrafts_ZeroDigitCurrency(t *testing.T) {
	userID := domain.NewEntityID()
	usdAccount := newTestAccount(t, userID, domain.USD)
	jpyAccount := newTestAccount(t, userID, domain.JPY)

	systemAccounts := map[domain.CurrencyCode]domain.Account{
		domain.USD: domain.NewSystemAccount(userID, domain.USD, testNow),
		domain.JPY: domain.NewSystemAccount(userID, domain.JPY, testNow),
	}

	drafts := []domain.OperationDraft{
		{Account: usdAccount, Amount: mustAmount(t, "-10.00", domain.USD)},
		{Account: jpyAccount, Amount: mustAmount(t, "1500", domain.JPY)},
	}

	balanced, err := domain.BalanceDrafts(drafts, systemAccounts)
	require.NoError(t, err)
	require.Len(t, balanced, 4)
	assert.Equal(t, "-1500", balanced[3].Amount.String())
}

func TestBalanceDrafts_MissingSystemAccount(t *testing.T) {
	userID := domain.NewEntityID()
	usdAccount := newTestAccount(t, userID, domain.USD)
	eurAccount := newTestAccount(t, userID, domain.EUR)

	drafts := []domain.OperationDraft{
		{Account: usdAccount, Amount: mustAmount(t, "-10.00", domain.USD)},
		{Account: eurAccount, Amount: mustAmount(t, "9.00", domain.EUR)},
	}

	_, err := domain.BalanceDrafts(drafts, map[domain.CurrencyCode]domain.Account{})
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestCreateEntry_RequiresExactlyTwoUserOperations(t *testing.T) {
	userID := domain.NewEntityID()
	cash := newTestAccount(t, userID, domain.USD)

	one := []domain.OperationDraft{
		{Account: cash, Amount: mustAmount(t, "0.00", domain.USD)},
	}
	_, err := domain.CreateEntry(userID, domain.NewEntityID(), "", one, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	three := []domain.OperationDraft{
		{Account: cash, Amount: mustAmount(t, "-2.00", domain.USD)},
		{Account: cash, Amount: mustAmount(t, "1.00", domain.USD)},
		{Account: cash, Amount: mustAmount(t, "1.00", domain.USD)},
	}
	_, err = domain.CreateEntry(userID, domain.NewEntityID(), "", three, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateEntry_RejectsNonZeroNet(t *testing.T) {
	userID := domain.NewEntityID()
	cash := newTestAccount(t, userID, domain.USD)
	food := newTestAccount(t, userID, domain.USD)

	drafts := []domain.OperationDraft{
		{Account: cash, Amount: mustAmount(t, "-25.00", domain.USD)},
		{Account: food, Amount: mustAmount(t, "24.00", domain.USD)},
	}
	_, err := domain.CreateEntry(userID, domain.NewEntityID(), "", drafts, testNow)
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
}

func TestCreateEntry_FreshIDPerCall(t *testing.T) {
	userID := domain.NewEntityID()
	cash := newTestAccount(t, userID, domain.USD)
	food := newTestAccount(t, userID, domain.USD)

	drafts := []domain.OperationDraft{
		{Account: cash, Amount: mustAmount(t, "-5.00", domain.USD)},
		{Account: food, Amount: mustAmount(t, "5.00", domain.USD)},
	}

	first, err := domain.CreateEntry(userID, domain.NewEntityID(), "", drafts, testNow)
	require.NoError(t, err)
	second, err := domain.CreateEntry(userID, domain.NewEntityID(), "", drafts, testNow)
	require.NoError(t, err)
	assert.NotEqual(t, first.EntryID, second.EntryID)
}

func TestEntry_OperationPartition(t *testing.T) {
	userID := domain.NewEntityID()
	cash := newTestAccount(t, userID, domain.USD)
	sys := domain.NewSystemAccount(userID, domain.USD, testNow)

	entryID := domain.NewEntityID()
	userOp, err := domain.CreateOperation(userID, entryID, domain.OperationDraft{
		Account: cash, Amount: mustAmount(t, "-3.00", domain.USD),
	}, testNow)
	require.NoError(t, err)
	sysOp, err := domain.CreateOperation(userID, entryID, domain.OperationDraft{
		Account: sys, Amount: mustAmount(t, "3.00", domain.USD), IsSystem: true,
	}, testNow)
	require.NoError(t, err)

	entry := domain.Entry{EntryID: entryID, Operations: []domain.Operation{userOp, sysOp}}
	assert.Len(t, entry.UserOperations(), 1)
	assert.Len(t, entry.SystemOperations(), 1)
	assert.True(t, entry.SystemOperations()[0].IsSystem)
}
