package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the transactions table row. Dates are stored as DATE and
// carried here in their canonical YYYY-MM-DD form.
type Transaction struct {
	TransactionID   string     `db:"transaction_id"`
	UserID          string     `db:"user_id"`
	Description     string     `db:"description"`
	PostingDate     string     `db:"posting_date"`
	TransactionDate string     `db:"transaction_date"`
	Hash            string     `db:"hash"`
	DeletedAt       *time.Time `db:"deleted_at"`
	AuditFields
}

// Entry is the entries table row.
type Entry struct {
	EntryID       string     `db:"entry_id"`
	UserID        string     `db:"user_id"`
	TransactionID string     `db:"transaction_id"`
	Description   string     `db:"description"`
	DeletedAt     *time.Time `db:"deleted_at"`
	AuditFields
}

// Operation is the operations table row. Amount and BaseAmount are stored
// as NUMERIC in major units; CurrencyCode supplies the exponent on read.
type Operation struct {
	OperationID      string           `db:"operation_id"`
	UserID           string           `db:"user_id"`
	AccountID        string           `db:"account_id"`
	EntryID          string           `db:"entry_id"`
	CurrencyCode     string           `db:"currency_code"`
	Amount           decimal.Decimal  `db:"amount"`
	BaseAmount       *decimal.Decimal `db:"base_amount"`
	BaseCurrencyCode *string          `db:"base_currency_code"`
	RateBasePerLocal *decimal.Decimal `db:"rate_base_per_local"`
	Description      string           `db:"description"`
	IsSystem         bool             `db:"is_system"`
	Hash             string           `db:"hash"`
	DeletedAt        *time.Time       `db:"deleted_at"`
	AuditFields
}
