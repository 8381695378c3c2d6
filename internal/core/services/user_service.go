package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
	portsrepo "github.com/gorushkin/ledgerly/internal/core/ports/repositories"
	portssvc "github.com/gorushkin/ledgerly/internal/core/ports/services"
	"github.com/gorushkin/ledgerly/internal/dto"
	"github.com/gorushkin/ledgerly/internal/middleware"
	"github.com/gorushkin/ledgerly/internal/utils/persistence"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{
		userRepo: userRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ensure userService implements the UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// Register creates a new user with a bcrypt-hashed password. The base
// currency defaults to USD when the request leaves it empty.
func (s *userService) Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	name, err := domain.NewUserName(req.Name)
	if err != nil {
		return nil, err
	}
	email, err := domain.NewEmail(req.Email)
	if err != nil {
		return nil, err
	}

	baseCurrency := domain.USD
	if req.BaseCurrency != "" {
		baseCurrency, err = domain.NewCurrencyCode(req.BaseCurrency)
		if err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: failed to hash password", apperrors.ErrInternal)
	}

	user, err := persistence.SaveWithIDRetry(ctx,
		func() (domain.User, error) {
			return domain.CreateUser(name, email, string(hashed), baseCurrency, s.now()), nil
		},
		s.userRepo.SaveUser,
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.UserID.String()))
	return &user, nil
}

// Authenticate verifies credentials and returns the user. Unknown email
// and wrong password report the same error so login failures do not leak
// which accounts exist.
func (s *userService) Authenticate(ctx context.Context, req dto.LoginRequest) (*domain.User, error) {
	email, err := domain.NewEmail(req.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if user.SoftDelete.IsDeleted() {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	return user, nil
}

// GetUserByID retrieves a user by identifier.
func (s *userService) GetUserByID(ctx context.Context, userID domain.EntityID) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}
