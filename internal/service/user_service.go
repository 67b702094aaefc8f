package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/feedback-board/internal/auth"
	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/repository"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// UserService implements the account management surface used by admins
// (and self-service profile updates).
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// UserInput describes admin create/update payload; zero values are kept
// on update.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Avatar   string
	Role     domain.UserRole
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Get fetches one account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getByHex(ctx, id)
}

// Create adds an account with an explicit role; admin only.
func (s *UserService) Create(ctx context.Context, input UserInput) (*domain.User, error) {
	if input.Password == "" {
		return nil, apperrors.NewValidationError("password is required")
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Avatar:       input.Avatar,
		Role:         role,
	}
	if err := user.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.users.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.NewValidationError("email already registered")
		}
		return nil, err
	}
	return user, nil
}

// Update modifies account fields. Role changes require the caller to be
// an admin; users may update their own profile otherwise.
func (s *UserService) Update(ctx context.Context, caller *domain.User, id string, input UserInput) (*domain.User, error) {
	user, err := s.getByHex(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.ID != user.ID && !caller.IsAdmin() {
		return nil, apperrors.NewForbidden("not authorized to update this user")
	}
	if input.Role != "" && input.Role != user.Role && !caller.IsAdmin() {
		return nil, apperrors.NewForbidden("not authorized to change roles")
	}

	if input.Name != "" {
		user.Name = strings.TrimSpace(input.Name)
	}
	if input.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := user.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.users.Update(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.NewValidationError("email already registered")
		}
		return nil, err
	}
	return user, nil
}

// Delete removes an account; admin only (enforced at the route).
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.getByHex(ctx, id)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, user.ID)
}

func (s *UserService) getByHex(ctx context.Context, id string) (*domain.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("no user found with id " + id)
	}
	user, err := s.users.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("no user found with id " + id)
		}
		return nil, err
	}
	return user, nil
}
