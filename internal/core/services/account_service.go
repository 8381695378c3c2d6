package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
	portsrepo "github.com/gorushkin/ledgerly/internal/core/ports/repositories"
	portssvc "github.com/gorushkin/ledgerly/internal/core/ports/services"
	"github.com/gorushkin/ledgerly/internal/dto"
	"github.com/gorushkin/ledgerly/internal/middleware"
	"github.com/gorushkin/ledgerly/internal/utils/persistence"
)

// accountService provides account operations, including the lazily created
// per-(user, currency) system accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	now         func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a new account for the user after validation.
func (s *accountService) CreateAccount(ctx context.Context, userID domain.EntityID, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	code, err := domain.NewCurrencyCode(req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	initial := req.InitialBalance
	if initial == "" {
		initial = "0"
	}
	initialBalance, err := domain.NewAmount(initial, code.MinorUnitDigits())
	if err != nil {
		return nil, err
	}

	params := domain.NewAccountParams{
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		CurrencyCode:   code,
		AccountType:    req.AccountType,
		InitialBalance: initialBalance,
	}

	account, err := persistence.SaveWithIDRetry(ctx,
		func() (domain.Account, error) { return domain.CreateAccount(params, s.now()) },
		s.accountRepo.SaveAccount,
	)
	if err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID.String()))
	return &account, nil
}

// GetAccountByID retrieves one of the user's accounts.
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID domain.EntityID) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, userID, accountID)
}

// ListAccounts retrieves a paginated list of the user's accounts.
func (s *accountService) ListAccounts(ctx context.Context, userID domain.EntityID, params dto.ListAccountsParams) ([]domain.Account, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, userID, limit, offset)
}

// UpdateAccount changes an account's name and/or description.
func (s *accountService) UpdateAccount(ctx context.Context, userID, accountID domain.EntityID, req dto.UpdateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsSystem() {
		return nil, fmt.Errorf("%w: system accounts cannot be modified", apperrors.ErrForbidden)
	}

	updated, err := account.UpdateDetails(req.Name, req.Description, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateAccount(ctx, updated); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID.String()))
		return nil, err
	}
	return &updated, nil
}

// DeleteAccount tombstones an account. The row is kept; only the soft
// delete flag changes.
func (s *accountService) DeleteAccount(ctx context.Context, userID, accountID domain.EntityID) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if account.IsSystem() {
		return fmt.Errorf("%w: system accounts cannot be deleted", apperrors.ErrForbidden)
	}

	deleted, err := account.MarkDeleted(s.now())
	if err != nil {
		return err
	}

	if err := s.accountRepo.UpdateAccount(ctx, deleted); err != nil {
		logger.Error("Failed to soft delete account", slog.String("error", err.Error()), slog.String("account_id", accountID.String()))
		return err
	}
	logger.Info("Account deleted", slog.String("account_id", accountID.String()))
	return nil
}

// FindOrCreateSystemAccount resolves the user's currency-trading account
// for a currency, creating it on first use. Concurrent creations for the
// same (user, currency) pair converge on one account: the storage layer's
// uniqueness constraint rejects the loser, which then re-fetches the
// winner's row.
func (s *accountService) FindOrCreateSystemAccount(ctx context.Context, userID domain.EntityID, code domain.CurrencyCode) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindSystemAccount(ctx, userID, code)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up system account for %s: %w", code, err)
	}

	created, err := persistence.SaveWithIDRetry(ctx,
		func() (domain.Account, error) { return domain.NewSystemAccount(userID, code, s.now()), nil },
		s.accountRepo.SaveAccount,
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race: another request created the account first.
			return s.accountRepo.FindSystemAccount(ctx, userID, code)
		}
		logger.Error("Failed to create system account", slog.String("error", err.Error()), slog.String("currency", code.String()))
		return nil, err
	}

	logger.Info("System account created", slog.String("account_id", created.AccountID.String()), slog.String("currency", code.String()))
	return &created, nil
}
