package service

import (
	"context"
	"strings"

	"capsort/internal/models"
	"capsort/internal/repository"
	"capsort/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// CreateUserInput provisions an account from an operator tool.
type CreateUserInput struct {
	FullName      string
	Email         string
	ContactNumber string
	Password      string
	Role          models.Role
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the caller's own account.
func (s *UserService) GetProfile(ctx context.Context, rc models.RequestContext) (*models.User, error) {
	if err := requireUser(rc); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, rc.UserID)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, storeError(err)
	}
	return user, nil
}

// CreateUser provisions an account. An existing email is a conflict.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	if !in.Role.Valid() {
		return nil, models.NewValidationError("role must be student or admin")
	}

	signup := validation.SignupInput{
		FullName:      in.FullName,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Password:      in.Password,
	}
	if err := validation.ValidateSignup(&signup); err != nil {
		return nil, err
	}

	hash, err := HashPassword(signup.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FullName:      signup.FullName,
		Email:         signup.Email,
		ContactNumber: signup.ContactNumber,
		Password:      hash,
		Role:          in.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError("A user with email " + repository.NormalizeEmail(in.Email) + " already exists")
		}
		return nil, storeError(err)
	}
	return user, nil
}

// ListUsers lists accounts, optionally restricted to one role.
func (s *UserService) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, models.NewValidationError("role must be student or admin")
	}
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// SetRole promotes or demotes the account with email.
func (s *UserService) SetRole(ctx context.Context, email string, role models.Role) error {
	if !role.Valid() {
		return models.NewValidationError("role must be student or admin")
	}
	if strings.TrimSpace(email) == "" {
		return models.NewValidationError("email is required")
	}
	ok, err := s.userRepo.SetRole(ctx, email, role)
	if err != nil {
		return storeError(err)
	}
	if !ok {
		return models.NewNotFoundError("User", repository.NormalizeEmail(email))
	}
	return nil
}

// RoleOf returns the stored role of a user. Admin middleware uses it so a
// demotion takes effect before the caller's token expires.
func (s *UserService) RoleOf(ctx context.Context, id uint) (models.Role, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
