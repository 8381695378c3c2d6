package repositories

import (
	"context"

	"github.com/gorushkin/ledgerly/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a user by identifier.
	FindUserByID(ctx context.Context, userID domain.EntityID) (*domain.User, error)

	// FindUserByEmail retrieves a user by email, for login.
	FindUserByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user. It reports apperrors.ErrDuplicateID on
	// an id collision and apperrors.ErrDuplicate on an email already in use.
	SaveUser(ctx context.Context, user domain.User) error
}

// UserRepositoryFacade combines the user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
