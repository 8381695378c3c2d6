package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
	portsrepo "github.com/gorushkin/ledgerly/internal/core/ports/repositories"
	portssvc "github.com/gorushkin/ledgerly/internal/core/ports/services"
	"github.com/gorushkin/ledgerly/internal/dto"
	"github.com/gorushkin/ledgerly/internal/middleware"
)

// entryContextLoader resolves everything a batch of raw entries needs
// before any Entry or Operation is built: one batched account fetch for the
// whole batch, and one system-account resolution per distinct currency.
type entryContextLoader struct {
	accountRepo portsrepo.AccountReader
	accountSvc  portssvc.AccountSvcFacade
}

// NewEntryContextLoader creates a new EntryContextLoaderSvc.
func NewEntryContextLoader(accountRepo portsrepo.AccountReader, accountSvc portssvc.AccountSvcFacade) portssvc.EntryContextLoaderSvc {
	return &entryContextLoader{
		accountRepo: accountRepo,
		accountSvc:  accountSvc,
	}
}

// Ensure entryContextLoader implements the EntryContextLoaderSvc interface
var _ portssvc.EntryContextLoaderSvc = (*entryContextLoader)(nil)

// LoadForEntries collects the de-duplicated account ids referenced anywhere
// in the batch, fetches them in one call, then resolves the user's system
// account for every currency those accounts use. Account and system-account
// resolution completes before any Entry or Operation construction starts.
func (l *entryContextLoader) LoadForEntries(ctx context.Context, userID domain.EntityID, entries []dto.CreateEntryRequest) (*portssvc.EntryContext, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountIDs, err := collectAccountIDs(entries)
	if err != nil {
		return nil, err
	}

	accounts, err := l.accountRepo.FindAccountsByIDs(ctx, userID, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		if _, found := accounts[id]; !found {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}

	systemAccounts := make(map[domain.CurrencyCode]domain.Account)
	for _, id := range accountIDs {
		code := accounts[id].CurrencyCode
		if _, done := systemAccounts[code]; done {
			continue
		}
		sysAcc, err := l.accountSvc.FindOrCreateSystemAccount(ctx, userID, code)
		if err != nil {
			logger.Error("Failed to resolve system account", slog.String("error", err.Error()), slog.String("currency", code.String()))
			return nil, fmt.Errorf("failed to resolve system account for %s: %w", code, err)
		}
		systemAccounts[code] = *sysAcc
	}

	return &portssvc.EntryContext{
		Accounts:       accounts,
		SystemAccounts: systemAccounts,
	}, nil
}

// collectAccountIDs gathers the distinct account ids referenced by the
// batch, preserving first-seen order.
func collectAccountIDs(entries []dto.CreateEntryRequest) ([]domain.EntityID, error) {
	seen := make(map[domain.EntityID]struct{})
	ids := make([]domain.EntityID, 0)
	for _, entry := range entries {
		for _, op := range entry.Operations {
			id, err := domain.EntityIDFromPersistence(op.AccountID)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: entries reference no accounts", apperrors.ErrValidation)
	}
	return ids, nil
}
