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
	"github.com/gorushkin/ledgerly/internal/middleware"
	"github.com/gorushkin/ledgerly/internal/utils/persistence"
)

// operationFactory converts raw postings into persisted Operation entities.
// Identifiers are allocated client-side, so every save goes through the
// collision-safe retry rather than a direct insert.
type operationFactory struct {
	accountRepo portsrepo.AccountReader
	txnRepo     portsrepo.TransactionWriter
	now         func() time.Time
}

// NewOperationFactory creates a new OperationFactorySvc.
func NewOperationFactory(accountRepo portsrepo.AccountReader, txnRepo portsrepo.TransactionWriter) portssvc.OperationFactorySvc {
	return &operationFactory{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Ensure operationFactory implements the OperationFactorySvc interface
var _ portssvc.OperationFactorySvc = (*operationFactory)(nil)

// CreateOperationsForEntry builds and persists the operations of one entry,
// in input order. All accounts are resolved and all drafts validated before
// the first write, so a missing account rejects the whole batch with
// nothing persisted. One account lookup per operation; batching belongs to
// the read path one layer up.
func (f *operationFactory) CreateOperationsForEntry(ctx context.Context, userID domain.EntityID, entry domain.Entry, rawOps []portssvc.RawOperation) ([]domain.Operation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	drafts := make([]domain.OperationDraft, 0, len(rawOps))
	for _, raw := range rawOps {
		account, err := f.accountRepo.FindAccountByID(ctx, userID, raw.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrAccountNotFound) {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, raw.AccountID)
			}
			return nil, fmt.Errorf("failed to load account %s: %w", raw.AccountID, err)
		}

		amount, err := domain.NewAmount(raw.Amount, account.CurrencyCode.MinorUnitDigits())
		if err != nil {
			return nil, err
		}

		draft := domain.OperationDraft{
			Account:          *account,
			Amount:           amount,
			Description:      raw.Description,
			IsSystem:         raw.IsSystem,
			RateBasePerLocal: raw.RateBasePerLocal,
		}
		if raw.BaseAmount != nil {
			baseAmount, err := domain.NewAmount(*raw.BaseAmount, raw.BaseCurrency.MinorUnitDigits())
			if err != nil {
				return nil, err
			}
			baseCurrency := raw.BaseCurrency
			draft.BaseAmount = &baseAmount
			draft.BaseCurrency = &baseCurrency
		}
		drafts = append(drafts, draft)
	}

	ops := make([]domain.Operation, 0, len(drafts))
	for _, draft := range drafts {
		op, err := persistence.SaveWithIDRetry(ctx,
			func() (domain.Operation, error) { return domain.CreateOperation(userID, entry.EntryID, draft, f.now()) },
			f.txnRepo.SaveOperation,
		)
		if err != nil {
			logger.Error("Failed to persist operation", slog.String("error", err.Error()), slog.String("entry_id", entry.EntryID.String()))
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
