package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mgarcia/jobboard/internal/config"
	"github.com/mgarcia/jobboard/internal/db"
	"github.com/mgarcia/jobboard/internal/types"
)

// UserService provides business logic for account operations.
type UserService struct {
	store          Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies.
func NewUserService(store Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new candidate account. The role is never taken from the
// request: admin accounts are provisioned out of band, not through public
// registration.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	exists, err := s.store.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &db.UserCreateInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         types.RoleCandidate,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns the public profile.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	record, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// The same error for unknown email and wrong password, so responses do
	// not reveal which accounts exist.
	if record == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, record.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return &record.User, nil
}

// GetProfile returns the public profile for a user.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return user, nil
}

// UpdateProfile applies a profile change and returns the updated profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error) {
	user, err := s.store.UpdateUserProfile(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return user, nil
}

// UpdatePassword verifies the current password and replaces it.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	record, err := s.store.GetUserRecordByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if record == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, record.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, userID, newPasswordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
