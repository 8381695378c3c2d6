package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
	portsrepo "github.com/gorushkin/ledgerly/internal/core/ports/repositories"
	"github.com/gorushkin/ledgerly/internal/models"
)

const userEmailConstraint = "uq_users_email"

type PgxUserRepository struct {
	pool    *pgxpool.Pool
	retrier *retrier
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{pool: pool, retrier: newRetrier()}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

// Helper to convert models.User from DB to domain.User
func toDomainUser(m models.User) (domain.User, error) {
	userID, err := domain.EntityIDFromPersistence(m.UserID)
	if err != nil {
		return domain.User{}, err
	}
	baseCurrency, err := domain.NewCurrencyCode(m.BaseCurrency)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		UserID:       userID,
		Name:         domain.UserName(m.Name),
		Email:        domain.Email(m.Email),
		PasswordHash: m.PasswordHash,
		BaseCurrency: baseCurrency,
		SoftDelete:   domain.SoftDeleteFromPersistence(m.DeletedAt),
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}, nil
}

const userColumns = `user_id, name, email, password_hash, base_currency, deleted_at, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Name,
		&m.Email,
		&m.PasswordHash,
		&m.BaseCurrency,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

// SaveUser inserts a new user. An email already in use is reported as
// ErrDuplicate; a primary key collision as ErrDuplicateID.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	err := r.retrier.retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			user.UserID.String(),
			user.Name.String(),
			user.Email.String(),
			user.PasswordHash,
			user.BaseCurrency.String(),
			user.SoftDelete.DeletedAt(),
			user.CreatedAt,
			user.UpdatedAt,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == userEmailConstraint {
				return fmt.Errorf("%w: email %s already in use", apperrors.ErrDuplicate, user.Email)
			}
			return fmt.Errorf("%w: user id %s", apperrors.ErrDuplicateID, user.UserID)
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

// FindUserByID retrieves a user by identifier.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID domain.EntityID) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	m, err := scanUser(r.pool.QueryRow(ctx, query, userID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}

	user, err := toDomainUser(m)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail retrieves a user by email, for login.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL;
	`
	m, err := scanUser(r.pool.QueryRow(ctx, query, email.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no user with this email", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	user, err := toDomainUser(m)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
