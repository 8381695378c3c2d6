package services

import (
	"context"

	"github.com/gorushkin/ledgerly/internal/core/domain"
	"github.com/gorushkin/ledgerly/internal/dto"
)

// AccountSvcFacade exposes account operations to the HTTP boundary and to
// other services.
type AccountSvcFacade interface {
	// CreateAccount creates a new user account after validation.
	CreateAccount(ctx context.Context, userID domain.EntityID, req dto.CreateAccountRequest) (*domain.Account, error)

	// GetAccountByID retrieves one of the user's accounts.
	GetAccountByID(ctx context.Context, userID, accountID domain.EntityID) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of the user's accounts.
	ListAccounts(ctx context.Context, userID domain.EntityID, params dto.ListAccountsParams) ([]domain.Account, error)

	// UpdateAccount changes an account's name and/or description.
	UpdateAccount(ctx context.Context, userID, accountID domain.EntityID, req dto.UpdateAccountRequest) (*domain.Account, error)

	// DeleteAccount tombstones an account.
	DeleteAccount(ctx context.Context, userID, accountID domain.EntityID) error

	// FindOrCreateSystemAccount resolves the user's currency-trading
	// account for a currency, creating it on first use. Idempotent per
	// (user, currency): repeated calls return the same underlying account.
	FindOrCreateSystemAccount(ctx context.Context, userID domain.EntityID, code domain.CurrencyCode) (*domain.Account, error)
}
