package repositories

import (
	"context"

	"github.com/gorushkin/ledgerly/internal/core/domain"
)

// AccountReader defines read operations for account data. All lookups are
// scoped to the owning user; an account belonging to someone else is
// reported as not found.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, userID, accountID domain.EntityID) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts in one batched query.
	// IDs that do not exist are simply absent from the result map.
	FindAccountsByIDs(ctx context.Context, userID domain.EntityID, accountIDs []domain.EntityID) (map[domain.EntityID]domain.Account, error)

	// FindSystemAccount retrieves the user's currency-trading account for a
	// currency, or apperrors.ErrNotFound when none exists yet.
	FindSystemAccount(ctx context.Context, userID domain.EntityID, code domain.CurrencyCode) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of the user's live accounts.
	ListAccounts(ctx context.Context, userID domain.EntityID, limit, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. It reports
	// apperrors.ErrDuplicateID on an id collision and apperrors.ErrDuplicate
	// when the (user, currency) system-account uniqueness is violated.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount persists a new state of an existing account.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
