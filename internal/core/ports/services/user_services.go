package services

import (
	"context"

	"github.com/gorushkin/ledgerly/internal/core/domain"
	"github.com/gorushkin/ledgerly/internal/dto"
)

// UserSvcFacade exposes user registration and authentication.
type UserSvcFacade interface {
	// Register creates a new user with a hashed password.
	Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// Authenticate verifies credentials and returns the user.
	Authenticate(ctx context.Context, req dto.LoginRequest) (*domain.User, error)

	// GetUserByID retrieves a user by identifier.
	GetUserByID(ctx context.Context, userID domain.EntityID) (*domain.User, error)
}
