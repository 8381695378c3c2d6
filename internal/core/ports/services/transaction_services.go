package services

import (
	"context"

	"github.com/gorushkin/ledgerly/internal/core/domain"
	"github.com/gorushkin/ledgerly/internal/dto"
	"github.com/shopspring/decimal"
)

// EntryContext holds the lookups a batch of entries needs before any
// Entry or Operation is built: every referenced account, and the user's
// system account for every currency those accounts use.
type EntryContext struct {
	Accounts       map[domain.EntityID]domain.Account
	SystemAccounts map[domain.CurrencyCode]domain.Account
}

// EntryContextLoaderSvc preloads the accounts a batch of raw entries will
// reference. One batched account fetch regardless of entry count; one
// system-account resolution per distinct currency.
type EntryContextLoaderSvc interface {
	LoadForEntries(ctx context.Context, userID domain.EntityID, entries []dto.CreateEntryRequest) (*EntryContext, error)
}

// RawOperation is the factory input: an account reference by id plus the
// posting fields, before the account is loaded and the amount parsed.
type RawOperation struct {
	AccountID        domain.EntityID
	Amount           string
	Description      string
	IsSystem         bool
	BaseAmount       *string
	BaseCurrency     domain.CurrencyCode // exponent source for BaseAmount
	RateBasePerLocal *decimal.Decimal
}

// OperationFactorySvc converts raw postings into persisted Operations for
// an entry, validating account existence and ownership per posting.
type OperationFactorySvc interface {
	CreateOperationsForEntry(ctx context.Context, userID domain.EntityID, entry domain.Entry, rawOps []RawOperation) ([]domain.Operation, error)
}

// TransactionSvcFacade exposes transaction operations to the HTTP boundary.
type TransactionSvcFacade interface {
	// CreateTransaction assembles and persists a transaction with its
	// balanced entries, synthesizing cross-currency system operations.
	CreateTransaction(ctx context.Context, userID domain.EntityID, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// GetTransactionByID retrieves a transaction with entries and operations.
	GetTransactionByID(ctx context.Context, userID, transactionID domain.EntityID) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transaction headers.
	ListTransactions(ctx context.Context, userID domain.EntityID, params dto.ListTransactionsParams) ([]domain.Transaction, error)

	// ListOperationsByAccount retrieves operations posted to one account.
	ListOperationsByAccount(ctx context.Context, userID, accountID domain.EntityID, params dto.ListTransactionsParams) ([]domain.Operation, error)

	// UpdateTransaction changes header fields and recomputes the hash.
	UpdateTransaction(ctx context.Context, userID, transactionID domain.EntityID, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction tombstones a transaction and its entries.
	DeleteTransaction(ctx context.Context, userID, transactionID domain.EntityID) error
}
