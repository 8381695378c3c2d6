package domain

import (
	"fmt"
	"time"

	"github.com/gorushkin/ledgerly/internal/apperrors"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
	// CurrencyTrading marks the per-(user,currency) system accounts that
	// absorb the balancing remainder of multi-currency entries. End users
	// never post to these directly.
	CurrencyTrading AccountType = "CURRENCY_TRADING"
)

// validAccountTypes are the types a user may create accounts with.
// CURRENCY_TRADING is reserved for system accounts.
var validAccountTypes = map[AccountType]struct{}{
	Asset: {}, Liability: {}, Equity: {}, Income: {}, Expense: {},
}

// Account represents a financial account owned by exactly one user. All
// postings against it are in its currency.
type Account struct {
	AccountID      EntityID     `json:"accountID"`
	UserID         EntityID     `json:"userID"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	CurrencyCode   CurrencyCode `json:"currencyCode"`
	AccountType    AccountType  `json:"accountType"`
	InitialBalance Amount       `json:"initialBalance"`
	SoftDelete     SoftDelete
	AuditFields
}

// NewAccountParams carries the validated inputs for CreateAccount.
type NewAccountParams struct {
	UserID         EntityID
	Name           string
	Description    string
	CurrencyCode   CurrencyCode
	AccountType    AccountType
	InitialBalance Amount
}

// CreateAccount builds a new user account with a fresh identifier.
func CreateAccount(p NewAccountParams, now time.Time) (Account, error) {
	if p.Name == "" {
		return Account{}, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	if _, ok := validAccountTypes[p.AccountType]; !ok {
		return Account{}, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, p.AccountType)
	}
	if p.InitialBalance.Exponent() != p.CurrencyCode.MinorUnitDigits() {
		return Account{}, fmt.Errorf("%w: initial balance does not match currency %s", apperrors.ErrInvalidAmount, p.CurrencyCode)
	}
	return Account{
		AccountID:      NewEntityID(),
		UserID:         p.UserID,
		Name:           p.Name,
		Description:    p.Description,
		CurrencyCode:   p.CurrencyCode,
		AccountType:    p.AccountType,
		InitialBalance: p.InitialBalance,
		SoftDelete:     NewSoftDelete(),
		AuditFields:    NewAuditFields(now),
	}, nil
}

// NewSystemAccount builds the balancing account for a (user, currency)
// pair. A fresh identifier is allocated on every call so the id-retry
// mechanism can rebuild on collision; uniqueness per pair is the storage
// layer's concern.
func NewSystemAccount(userID EntityID, code CurrencyCode, now time.Time) Account {
	return Account{
		AccountID:      NewEntityID(),
		UserID:         userID,
		Name:           fmt.Sprintf("%s trading", code),
		Description:    fmt.Sprintf("System account for %s currency trading", code),
		CurrencyCode:   code,
		AccountType:    CurrencyTrading,
		InitialBalance: ZeroAmount(code.MinorUnitDigits()),
		SoftDelete:     NewSoftDelete(),
		AuditFields:    NewAuditFields(now),
	}
}

// IsSystem reports whether the account is a currency-trading system account.
func (a Account) IsSystem() bool {
	return a.AccountType == CurrencyTrading
}

// UpdateDetails returns a copy with name and/or description changed.
// Nil fields are left untouched.
func (a Account) UpdateDetails(name, description *string, now time.Time) (Account, error) {
	if err := a.SoftDelete.ValidateUpdateAllowed(); err != nil {
		return Account{}, err
	}
	if name != nil {
		if *name == "" {
			return Account{}, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
		}
		a.Name = *name
	}
	if description != nil {
		a.Description = *description
	}
	a.AuditFields = a.AuditFields.Touched(now)
	return a, nil
}

// MarkDeleted tombstones the account, returning the new state.
func (a Account) MarkDeleted(now time.Time) (Account, error) {
	if err := a.SoftDelete.ValidateUpdateAllowed(); err != nil {
		return Account{}, err
	}
	a.SoftDelete = a.SoftDelete.MarkDeleted(now)
	a.AuditFields = a.AuditFields.Touched(now)
	return a, nil
}
