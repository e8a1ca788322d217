package service

import (
	"context"
	"errors"
	"strings"

	"Tracker/internal/auth"
	dom "Tracker/internal/domain"
	"Tracker/internal/repo"
	"Tracker/internal/utils"

	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidSignup      = errors.New("username, email and password required")
)

// UserService handles signup and credential checks.
type UserService struct {
	repo repo.UserRepo
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo}
}

// Signup creates a new user with a hashed password. A taken username or email
// returns ErrUserExists; which of the two collided is not exposed.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return dom.User{}, ErrInvalidSignup
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, email, hash)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUserExists
		}
		return dom.User{}, err
	}
	return u, nil
}

// ValidateCredentials checks username and password; returns the user if valid.
// Unknown username and wrong password are indistinguishable to the caller.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil {
		return dom.User{}, err
	}
	if !ok {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}
