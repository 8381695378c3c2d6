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

// Constraint names from the accounts table, used to tell an id collision
// apart from a system-account uniqueness violation.
const (
	accountPKConstraint     = "accounts_pkey"
	systemAccountConstraint = "uq_accounts_system_currency"
)

type PgxAccountRepository struct {
	pool    *pgxpool.Pool
	retrier *retrier
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool, retrier: newRetrier()}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// Helper to convert domain.Account to models.Account for DB storage
func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID.String(),
		UserID:         d.UserID.String(),
		Name:           d.Name,
		Description:    d.Description,
		CurrencyCode:   d.CurrencyCode.String(),
		AccountType:    string(d.AccountType),
		InitialBalance: d.InitialBalance.Decimal(),
		DeletedAt:      d.SoftDelete.DeletedAt(),
		AuditFields: models.AuditFields{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
	}
}

// Helper to convert models.Account from DB to domain.Account
func toDomainAccount(m models.Account) (domain.Account, error) {
	accountID, err := domain.EntityIDFromPersistence(m.AccountID)
	if err != nil {
		return domain.Account{}, err
	}
	userID, err := domain.EntityIDFromPersistence(m.UserID)
	if err != nil {
		return domain.Account{}, err
	}
	code, err := domain.NewCurrencyCode(m.CurrencyCode)
	if err != nil {
		return domain.Account{}, err
	}
	balance, err := domain.AmountFromPersistence(m.InitialBalance.String(), code.MinorUnitDigits())
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{
		AccountID:      accountID,
		UserID:         userID,
		Name:           m.Name,
		Description:    m.Description,
		CurrencyCode:   code,
		AccountType:    domain.AccountType(m.AccountType),
		InitialBalance: balance,
		SoftDelete:     domain.SoftDeleteFromPersistence(m.DeletedAt),
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}, nil
}

const accountColumns = `account_id, user_id, name, description, currency_code, account_type, initial_balance, deleted_at, created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	var deletedAt *time.Time
	var balance decimal.Decimal
	err := row.Scan(
		&m.AccountID,
		&m.UserID,
		&m.Name,
		&m.Description,
		&m.CurrencyCode,
		&m.AccountType,
		&balance,
		&deletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return models.Account{}, err
	}
	m.InitialBalance = balance
	m.DeletedAt = deletedAt
	return m, nil
}

// SaveAccount inserts a new account. A primary key collision is reported
// as ErrDuplicateID so the caller can rebuild with a fresh id; a second
// system account for the same (user, currency) is reported as ErrDuplicate.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	err := r.retrier.retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			m.AccountID,
			m.UserID,
			m.Name,
			m.Description,
			m.CurrencyCode,
			m.AccountType,
			m.InitialBalance,
			m.DeletedAt,
			m.CreatedAt,
			m.UpdatedAt,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case systemAccountConstraint:
				return fmt.Errorf("%w: system account for this currency already exists", apperrors.ErrDuplicate)
			default:
				return fmt.Errorf("%w: account id %s", apperrors.ErrDuplicateID, m.AccountID)
			}
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID, scoped to the owner.
// Tombstoned accounts are returned; rejecting writes against them is the
// domain layer's job.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, userID, accountID domain.EntityID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = $1 AND user_id = $2;
	`
	m, err := scanAccount(r.pool.QueryRow(ctx, query, accountID.String(), userID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	account, err := toDomainAccount(m)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts in one query. Missing ids
// are simply absent from the result map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, userID domain.EntityID, accountIDs []domain.EntityID) (map[domain.EntityID]domain.Account, error) {
	result := make(map[domain.EntityID]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1) AND user_id = $2;
	`
	rows, err := r.pool.Query(ctx, query, ids, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		account, err := toDomainAccount(m)
		if err != nil {
			return nil, err
		}
		result[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return result, nil
}

// FindSystemAccount retrieves the user's currency-trading account for a
// currency, or apperrors.ErrNotFound when none exists yet.
func (r *PgxAccountRepository) FindSystemAccount(ctx context.Context, userID domain.EntityID, code domain.CurrencyCode) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND currency_code = $2 AND account_type = $3 AND deleted_at IS NULL;
	`
	m, err := scanAccount(r.pool.QueryRow(ctx, query, userID.String(), code.String(), string(domain.CurrencyTrading)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: system account for %s", apperrors.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to find system account for %s: %w", code, err)
	}

	account, err := toDomainAccount(m)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts retrieves a paginated list of the user's live accounts.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, userID domain.EntityID, limit, offset int) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, account_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.pool.Query(ctx, query, userID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		account, err := toDomainAccount(m)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount persists a new state of an existing account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $1, description = $2, deleted_at = $3, updated_at = $4
		WHERE account_id = $5 AND user_id = $6;
	`
	err := r.retrier.retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query,
			m.Name,
			m.Description,
			m.DeletedAt,
			m.UpdatedAt,
			m.AccountID,
			m.UserID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s", apperrors.ErrAccountNotFound, m.AccountID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	return nil
}
