package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
	portsrepo "github.com/gorushkin/ledgerly/internal/core/ports/repositories"
	"github.com/gorushkin/ledgerly/internal/models"
)

type PgxTransactionRepository struct {
	pool    *pgxpool.Pool
	retrier *retrier
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{pool: pool, retrier: newRetrier()}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const dateLayout = "2006-01-02"

// Helper to convert models.Transaction from DB to a domain.Transaction
// header without entries.
func toDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	transactionID, err := domain.EntityIDFromPersistence(m.TransactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	userID, err := domain.EntityIDFromPersistence(m.UserID)
	if err != nil {
		return domain.Transaction{}, err
	}
	postingDate, err := domain.NewDateString(m.PostingDate)
	if err != nil {
		return domain.Transaction{}, err
	}
	transactionDate, err := domain.NewDateString(m.TransactionDate)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		TransactionID:   transactionID,
		UserID:          userID,
		Description:     m.Description,
		PostingDate:     postingDate,
		TransactionDate: transactionDate,
		Hash:            m.Hash,
		SoftDelete:      domain.SoftDeleteFromPersistence(m.DeletedAt),
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}, nil
}

// Helper to convert models.Entry from DB to a domain.Entry without
// operations.
func toDomainEntry(m models.Entry) (domain.Entry, error) {
	entryID, err := domain.EntityIDFromPersistence(m.EntryID)
	if err != nil {
		return domain.Entry{}, err
	}
	userID, err := domain.EntityIDFromPersistence(m.UserID)
	if err != nil {
		return domain.Entry{}, err
	}
	transactionID, err := domain.EntityIDFromPersistence(m.TransactionID)
	if err != nil {
		return domain.Entry{}, err
	}
	return domain.Entry{
		EntryID:       entryID,
		UserID:        userID,
		TransactionID: transactionID,
		Description:   m.Description,
		SoftDelete:    domain.SoftDeleteFromPersistence(m.DeletedAt),
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}, nil
}

// Helper to convert models.Operation from DB to domain.Operation.
func toDomainOperation(m models.Operation) (domain.Operation, error) {
	operationID, err := domain.EntityIDFromPersistence(m.OperationID)
	if err != nil {
		return domain.Operation{}, err
	}
	userID, err := domain.EntityIDFromPersistence(m.UserID)
	if err != nil {
		return domain.Operation{}, err
	}
	accountID, err := domain.EntityIDFromPersistence(m.AccountID)
	if err != nil {
		return domain.Operation{}, err
	}
	entryID, err := domain.EntityIDFromPersistence(m.EntryID)
	if err != nil {
		return domain.Operation{}, err
	}
	code, err := domain.NewCurrencyCode(m.CurrencyCode)
	if err != nil {
		return domain.Operation{}, err
	}
	amount, err := domain.AmountFromPersistence(m.Amount.String(), code.MinorUnitDigits())
	if err != nil {
		return domain.Operation{}, err
	}

	op := domain.Operation{
		OperationID:      operationID,
		UserID:           userID,
		AccountID:        accountID,
		EntryID:          entryID,
		CurrencyCode:     code,
		Amount:           amount,
		RateBasePerLocal: m.RateBasePerLocal,
		Description:      m.Description,
		IsSystem:         m.IsSystem,
		Hash:             m.Hash,
		SoftDelete:       domain.SoftDeleteFromPersistence(m.DeletedAt),
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
	if m.BaseAmount != nil && m.BaseCurrencyCode != nil {
		baseCode, err := domain.NewCurrencyCode(*m.BaseCurrencyCode)
		if err != nil {
			return domain.Operation{}, err
		}
		baseAmount, err := domain.AmountFromPersistence(m.BaseAmount.String(), baseCode.MinorUnitDigits())
		if err != nil {
			return domain.Operation{}, err
		}
		op.BaseAmount = &baseAmount
		op.BaseCurrency = &baseCode
	}
	return op, nil
}

// SaveTransaction persists a transaction header. Entries are saved
// separately by the assembly flow.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, user_id, description, posting_date, transaction_date, hash, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	err := r.retrier.retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			txn.TransactionID.String(),
			txn.UserID.String(),
			txn.Description,
			txn.PostingDate.Time(),
			txn.TransactionDate.Time(),
			txn.Hash,
			txn.SoftDelete.DeletedAt(),
			txn.CreatedAt,
			txn.UpdatedAt,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transaction id %s", apperrors.ErrDuplicateID, txn.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// SaveEntry persists an entry row.
func (r *PgxTransactionRepository) SaveEntry(ctx context.Context, entry domain.Entry) error {
	query := `
		INSERT INTO entries (entry_id, user_id, transaction_id, description, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	err := r.retrier.retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			entry.EntryID.String(),
			entry.UserID.String(),
			entry.TransactionID.String(),
			entry.Description,
			entry.SoftDelete.DeletedAt(),
			entry.CreatedAt,
			entry.UpdatedAt,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: entry id %s", apperrors.ErrDuplicateID, entry.EntryID)
		}
		return fmt.Errorf("failed to save entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// SaveOperation persists a single operation.
func (r *PgxTransactionRepository) SaveOperation(ctx context.Context, op domain.Operation) error {
	var baseAmount *decimal.Decimal
	var baseCurrency *string
	if op.BaseAmount != nil {
		d := op.BaseAmount.Decimal()
		baseAmount = &d
	}
	if op.BaseCurrency != nil {
		s := op.BaseCurrency.String()
		baseCurrency = &s
	}

	query := `
		INSERT INTO operations (operation_id, user_id, account_id, entry_id, currency_code, amount, base_amount, base_currency_code, rate_base_per_local, description, is_system, hash, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	err := r.retrier.retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			op.OperationID.String(),
			op.UserID.String(),
			op.AccountID.String(),
			op.EntryID.String(),
			op.CurrencyCode.String(),
			op.Amount.Decimal(),
			baseAmount,
			baseCurrency,
			op.RateBasePerLocal,
			op.Description,
			op.IsSystem,
			op.Hash,
			op.SoftDelete.DeletedAt(),
			op.CreatedAt,
			op.UpdatedAt,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: operation id %s", apperrors.ErrDuplicateID, op.OperationID)
		}
		return fmt.Errorf("failed to save operation %s: %w", op.OperationID, err)
	}
	return nil
}

// UpdateTransaction persists a new header state.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET description = $1, posting_date = $2, transaction_date = $3, hash = $4, updated_at = $5
		WHERE transaction_id = $6 AND user_id = $7 AND deleted_at IS NULL;
	`
	err := r.retrier.retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query,
			txn.Description,
			txn.PostingDate.Time(),
			txn.TransactionDate.Time(),
			txn.Hash,
			txn.UpdatedAt,
			txn.TransactionID.String(),
			txn.UserID.String(),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, txn.TransactionID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// SoftDeleteTransaction tombstones a transaction with its entries and
// operations in one database transaction.
func (r *PgxTransactionRepository) SoftDeleteTransaction(ctx context.Context, userID, transactionID domain.EntityID, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE transactions
		SET deleted_at = $1, updated_at = $1
		WHERE transaction_id = $2 AND user_id = $3 AND deleted_at IS NULL;
	`, now, transactionID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE entries
		SET deleted_at = $1, updated_at = $1
		WHERE transaction_id = $2 AND user_id = $3 AND deleted_at IS NULL;
	`, now, transactionID.String(), userID.String()); err != nil {
		return fmt.Errorf("failed to delete entries of transaction %s: %w", transactionID, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE operations
		SET deleted_at = $1, updated_at = $1
		WHERE user_id = $2 AND deleted_at IS NULL AND entry_id IN (
			SELECT entry_id FROM entries WHERE transaction_id = $3
		);
	`, now, userID.String(), transactionID.String()); err != nil {
		return fmt.Errorf("failed to delete operations of transaction %s: %w", transactionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete of transaction %s: %w", transactionID, err)
	}
	return nil
}

const transactionColumns = `transaction_id, user_id, description, posting_date, transaction_date, hash, deleted_at, created_at, updated_at`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	var postingDate, transactionDate time.Time
	err := row.Scan(
		&m.TransactionID,
		&m.UserID,
		&m.Description,
		&postingDate,
		&transactionDate,
		&m.Hash,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	m.PostingDate = postingDate.Format(dateLayout)
	m.TransactionDate = transactionDate.Format(dateLayout)
	return m, nil
}

// FindTransactionByID retrieves a transaction with its entries and their
// operations populated, in insertion order.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, userID, transactionID domain.EntityID) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1 AND user_id = $2;
	`
	m, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID.String(), userID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}

	txn, err := toDomainTransaction(m)
	if err != nil {
		return nil, err
	}

	entries, err := r.loadEntries(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	txn.Entries = entries
	return &txn, nil
}

// loadEntries fetches the entries of one transaction with their operations,
// using one query per table.
func (r *PgxTransactionRepository) loadEntries(ctx context.Context, userID, transactionID domain.EntityID) ([]domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT entry_id, user_id, transaction_id, description, deleted_at, created_at, updated_at
		FROM entries
		WHERE transaction_id = $1 AND user_id = $2
		ORDER BY created_at, entry_id;
	`, transactionID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load entries of transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	var entries []domain.Entry
	entryIndex := make(map[domain.EntityID]int)
	for rows.Next() {
		var m models.Entry
		if err := rows.Scan(&m.EntryID, &m.UserID, &m.TransactionID, &m.Description, &m.DeletedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entry, err := toDomainEntry(m)
		if err != nil {
			return nil, err
		}
		entryIndex[entry.EntryID] = len(entries)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	opRows, err := r.pool.Query(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE user_id = $1 AND entry_id IN (
			SELECT entry_id FROM entries WHERE transaction_id = $2
		)
		ORDER BY created_at, operation_id;
	`, userID.String(), transactionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load operations of transaction %s: %w", transactionID, err)
	}
	defer opRows.Close()

	for opRows.Next() {
		m, err := scanOperation(opRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}
		op, err := toDomainOperation(m)
		if err != nil {
			return nil, err
		}
		idx, ok := entryIndex[op.EntryID]
		if !ok {
			continue
		}
		entries[idx].Operations = append(entries[idx].Operations, op)
	}
	if err := opRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation rows: %w", err)
	}
	return entries, nil
}

// FindTransactionByHash retrieves a live transaction header with the given
// content hash.
func (r *PgxTransactionRepository) FindTransactionByHash(ctx context.Context, userID domain.EntityID, hash string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND hash = $2 AND deleted_at IS NULL
		LIMIT 1;
	`
	m, err := scanTransaction(r.pool.QueryRow(ctx, query, userID.String(), hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no transaction with this hash", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find transaction by hash: %w", err)
	}

	txn, err := toDomainTransaction(m)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListTransactions retrieves a paginated list of live transaction headers,
// newest posting date first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, userID domain.EntityID, limit, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY posting_date DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.pool.Query(ctx, query, userID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txn, err := toDomainTransaction(m)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

const operationColumns = `operation_id, user_id, account_id, entry_id, currency_code, amount, base_amount, base_currency_code, rate_base_per_local, description, is_system, hash, deleted_at, created_at, updated_at`

func scanOperation(row pgx.Row) (models.Operation, error) {
	var m models.Operation
	var amount decimal.Decimal
	err := row.Scan(
		&m.OperationID,
		&m.UserID,
		&m.AccountID,
		&m.EntryID,
		&m.CurrencyCode,
		&amount,
		&m.BaseAmount,
		&m.BaseCurrencyCode,
		&m.RateBasePerLocal,
		&m.Description,
		&m.IsSystem,
		&m.Hash,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return models.Operation{}, err
	}
	m.Amount = amount
	return m, nil
}

// ListOperationsByAccount retrieves a paginated list of live operations
// posted against one account, newest first.
func (r *PgxTransactionRepository) ListOperationsByAccount(ctx context.Context, userID, accountID domain.EntityID, limit, offset int) ([]domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM operations
		WHERE user_id = $1 AND account_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC, operation_id
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.pool.Query(ctx, query, userID.String(), accountID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations for account %s: %w", accountID, err)
	}
	defer rows.Close()

	ops := make([]domain.Operation, 0, limit)
	for rows.Next() {
		m, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}
		op, err := toDomainOperation(m)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation rows: %w", err)
	}
	return ops, nil
}
