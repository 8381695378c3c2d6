package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the accounts table row. InitialBalance is the canonical
// major-unit value; the currency's exponent restores the exact Amount.
type Account struct {
	AccountID      string          `db:"account_id"`
	UserID         string          `db:"user_id"`
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	CurrencyCode   string          `db:"currency_code"`
	AccountType    string          `db:"account_type"`
	InitialBalance decimal.Decimal `db:"initial_balance"`
	DeletedAt      *time.Time      `db:"deleted_at"`
	AuditFields
}
