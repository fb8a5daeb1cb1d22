package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskdesk/apiserver/internal/auth"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates registration and credential checks.
type UserService struct {
	repo   UserRepository
	hasher auth.PasswordHasher
}

func NewUserService(repo UserRepository, hasher auth.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register stores a new user with a hashed password. It returns a
// MissingFieldError for blank inputs and store.ErrDuplicateEmail when the
// email is taken.
func (s *UserService) Register(ctx context.Context, name, email, password string) (types.User, error) {
	if err := requireFields("name", name, "email", email, "password", password); err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check email: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, types.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	})
}

// Authenticate returns the user whose email and password match.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}
