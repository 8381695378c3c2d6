package repositories

import (
	"context"
	"time"

	"github.com/gorushkin/ledgerly/internal/core/domain"
)

// TransactionReader defines read operations for transactions, entries and
// operations, always scoped to the owning user.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its entries and
	// their operations populated.
	FindTransactionByID(ctx context.Context, userID, transactionID domain.EntityID) (*domain.Transaction, error)

	// FindTransactionByHash retrieves a live transaction with the given
	// content hash, or apperrors.ErrNotFound. Used for duplicate-submission
	// detection.
	FindTransactionByHash(ctx context.Context, userID domain.EntityID, hash string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transaction headers,
	// newest posting date first.
	ListTransactions(ctx context.Context, userID domain.EntityID, limit, offset int) ([]domain.Transaction, error)

	// ListOperationsByAccount retrieves a paginated list of operations
	// posted against one account.
	ListOperationsByAccount(ctx context.Context, userID, accountID domain.EntityID, limit, offset int) ([]domain.Operation, error)
}

// TransactionWriter defines write operations. Each Save reports
// apperrors.ErrDuplicateID on an id collision so the id-retry wrapper can
// rebuild with a fresh identifier.
type TransactionWriter interface {
	// SaveTransaction persists a transaction header (no entries).
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// SaveEntry persists an entry row (no operations).
	SaveEntry(ctx context.Context, entry domain.Entry) error

	// SaveOperation persists a single operation.
	SaveOperation(ctx context.Context, op domain.Operation) error

	// UpdateTransaction persists a new state of a transaction header.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// SoftDeleteTransaction tombstones a transaction and everything it
	// owns (entries, operations) in one atomic write.
	SoftDeleteTransaction(ctx context.Context, userID, transactionID domain.EntityID, now time.Time) error
}

// TransactionRepositoryFacade combines the transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
