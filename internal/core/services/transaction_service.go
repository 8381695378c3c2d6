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
	"github.com/gorushkin/ledgerly/internal/utils/hashing"
	"github.com/gorushkin/ledgerly/internal/utils/persistence"
)

// transactionService assembles and persists transactions: it loads the
// entry context, balances each entry across currencies with system
// operations, and allocates every identifier through the collision-safe
// retry.
type transactionService struct {
	txnRepo   portsrepo.TransactionRepositoryFacade
	userRepo  portsrepo.UserReader
	ctxLoader portssvc.EntryContextLoaderSvc
	opFactory portssvc.OperationFactorySvc
	now       func() time.Time
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	userRepo portsrepo.UserReader,
	ctxLoader portssvc.EntryContextLoaderSvc,
	opFactory portssvc.OperationFactorySvc,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:   txnRepo,
		userRepo:  userRepo,
		ctxLoader: ctxLoader,
		opFactory: opFactory,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// CreateTransaction validates the request, loads the batch context,
// balances and persists every entry with its operations, and returns the
// assembled transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, userID domain.EntityID, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	postingDate, err := domain.NewDateString(req.PostingDate)
	if err != nil {
		return nil, err
	}
	transactionDate, err := domain.NewDateString(req.TransactionDate)
	if err != nil {
		return nil, err
	}
	if len(req.Entries) == 0 {
		return nil, fmt.Errorf("%w: transaction must have at least one entry", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// Duplicate submission check: same user, same header content.
	hash := hashing.TransactionHash(req.Description, postingDate.String(), transactionDate.String())
	if _, err := s.txnRepo.FindTransactionByHash(ctx, userID, hash); err == nil {
		return nil, fmt.Errorf("%w: identical transaction already recorded", apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}

	// Resolve all referenced accounts and system accounts before any
	// Entry or Operation is constructed.
	ectx, err := s.ctxLoader.LoadForEntries(ctx, userID, req.Entries)
	if err != nil {
		return nil, err
	}

	txn, err := persistence.SaveWithIDRetry(ctx,
		func() (domain.Transaction, error) {
			return domain.CreateTransaction(userID, req.Description, postingDate, transactionDate, s.now())
		},
		s.txnRepo.SaveTransaction,
	)
	if err != nil {
		logger.Error("Failed to save transaction", slog.String("error", err.Error()))
		return nil, err
	}

	for _, rawEntry := range req.Entries {
		entry, err := s.createEntry(ctx, userID, txn.TransactionID, rawEntry, ectx, user.BaseCurrency)
		if err != nil {
			return nil, err
		}
		txn.Entries = append(txn.Entries, entry)
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID.String()),
		slog.Int("entry_count", len(txn.Entries)),
	)
	return &txn, nil
}

// createEntry balances one raw entry, persists the entry row, then builds
// its operations through the factory.
func (s *transactionService) createEntry(
	ctx context.Context,
	userID, transactionID domain.EntityID,
	rawEntry dto.CreateEntryRequest,
	ectx *portssvc.EntryContext,
	baseCurrency domain.CurrencyCode,
) (domain.Entry, error) {
	drafts, err := s.buildUserDrafts(userID, rawEntry, ectx)
	if err != nil {
		return domain.Entry{}, err
	}

	balanced, err := domain.BalanceDrafts(drafts, ectx.SystemAccounts)
	if err != nil {
		return domain.Entry{}, err
	}

	entry, err := persistence.SaveWithIDRetry(ctx,
		func() (domain.Entry, error) {
			return domain.CreateEntry(userID, transactionID, rawEntry.Description, balanced, s.now())
		},
		s.txnRepo.SaveEntry,
	)
	if err != nil {
		return domain.Entry{}, err
	}

	ops, err := s.opFactory.CreateOperationsForEntry(ctx, userID, entry, rawOperations(rawEntry, balanced, baseCurrency))
	if err != nil {
		return domain.Entry{}, err
	}
	entry.Operations = ops
	return entry, nil
}

// buildUserDrafts turns the request's postings into drafts against the
// preloaded accounts, in input order.
func (s *transactionService) buildUserDrafts(userID domain.EntityID, rawEntry dto.CreateEntryRequest, ectx *portssvc.EntryContext) ([]domain.OperationDraft, error) {
	drafts := make([]domain.OperationDraft, 0, len(rawEntry.Operations))
	for _, rawOp := range rawEntry.Operations {
		id, err := domain.EntityIDFromPersistence(rawOp.AccountID)
		if err != nil {
			return nil, err
		}
		account, found := ectx.Accounts[id]
		if !found {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if account.UserID != userID {
			return nil, fmt.Errorf("%w: account %s belongs to a different user", apperrors.ErrForbidden, id)
		}
		amount, err := domain.NewAmount(rawOp.Amount, account.CurrencyCode.MinorUnitDigits())
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, domain.OperationDraft{
			Account:     account,
			Amount:      amount,
			Description: rawOp.Description,
		})
	}
	return drafts, nil
}

// rawOperations rebuilds the factory input from the balanced draft list.
// The first len(rawEntry.Operations) drafts are the user postings in input
// order; anything after them is a system balancing posting.
func rawOperations(rawEntry dto.CreateEntryRequest, balanced []domain.OperationDraft, baseCurrency domain.CurrencyCode) []portssvc.RawOperation {
	raws := make([]portssvc.RawOperation, 0, len(balanced))
	for i, draft := range balanced {
		raw := portssvc.RawOperation{
			AccountID:   draft.Account.AccountID,
			Amount:      draft.Amount.String(),
			Description: draft.Description,
			IsSystem:    draft.IsSystem,
		}
		if !draft.IsSystem && i < len(rawEntry.Operations) {
			raw.BaseAmount = rawEntry.Operations[i].BaseAmount
			raw.BaseCurrency = baseCurrency
			raw.RateBasePerLocal = rawEntry.Operations[i].RateBasePerLocal
		}
		raws = append(raws, raw)
	}
	return raws
}

// GetTransactionByID retrieves a transaction with its entries and
// operations, verifying the stored content hash.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID domain.EntityID) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := txn.ValidateHash(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Transaction hash mismatch", slog.String("transaction_id", transactionID.String()))
		return nil, err
	}
	return txn, nil
}

// ListTransactions retrieves a paginated list of transaction headers.
func (s *transactionService) ListTransactions(ctx context.Context, userID domain.EntityID, params dto.ListTransactionsParams) ([]domain.Transaction, error) {
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
	return s.txnRepo.ListTransactions(ctx, userID, limit, offset)
}

// ListOperationsByAccount retrieves operations posted to one account.
func (s *transactionService) ListOperationsByAccount(ctx context.Context, userID, accountID domain.EntityID, params dto.ListTransactionsParams) ([]domain.Operation, error) {
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
	return s.txnRepo.ListOperationsByAccount(ctx, userID, accountID, limit, offset)
}

// UpdateTransaction changes header fields, recomputes the hash and checks
// the result does not collide with another recorded transaction.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID domain.EntityID, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.txnRepo.FindTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	var postingDate, transactionDate *domain.DateString
	if req.PostingDate != nil {
		d, err := domain.NewDateString(*req.PostingDate)
		if err != nil {
			return nil, err
		}
		postingDate = &d
	}
	if req.TransactionDate != nil {
		d, err := domain.NewDateString(*req.TransactionDate)
		if err != nil {
			return nil, err
		}
		transactionDate = &d
	}

	updated, err := txn.UpdateHeader(req.Description, postingDate, transactionDate, s.now())
	if err != nil {
		return nil, err
	}

	if updated.Hash != txn.Hash {
		if _, err := s.txnRepo.FindTransactionByHash(ctx, userID, updated.Hash); err == nil {
			return nil, fmt.Errorf("%w: identical transaction already recorded", apperrors.ErrDuplicate)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check for duplicate transaction: %w", err)
		}
	}

	if err := s.txnRepo.UpdateTransaction(ctx, updated); err != nil {
		logger.Error("Failed to update transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID.String()))
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction tombstones a transaction together with its entries and
// operations.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID domain.EntityID) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.txnRepo.SoftDeleteTransaction(ctx, userID, transactionID, s.now()); err != nil {
		logger.Error("Failed to delete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID.String()))
		return err
	}
	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID.String()))
	return nil
}
