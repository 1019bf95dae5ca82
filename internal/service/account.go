// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes users.json and posts.json (or SQLite)
//
// Services take repository INTERFACES, never a concrete store, so the JSON
// store, the SQLite store and the in-memory fakes in the tests are all
// interchangeable.
//
// There are no sessions. Every protected request carries username and
// password in its body, and AccountService.ValidateUser turns that pair into
// the acting user (or apperror.ErrUnauthorized). Everything downstream works
// with that *model.User.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

// invalidCredentials is the one message every failed login gets, whether the
// username was unknown or the password wrong.
const invalidCredentials = "Invalid credentials"

// AccountService handles registration, login, profile changes and account
// deletion.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account.
//
// All three fields are required. The username must not be taken yet; the
// store enforces that atomically with the insert and returns
// apperror.ErrConflict otherwise. The password is stored as a bcrypt hash.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := requireFields(
		field{"username", username},
		field{"email", email},
		field{"password", password},
	); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("registration rejected: username taken", "username", username)
			return nil, err
		}
		return nil, fmt.Errorf("service: registering %q: %w", username, err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials and returns the matching user.
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.ValidateUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			s.logger.Warn("login failed", "username", username)
		}
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// ValidateUser resolves a username/password pair to the stored user.
//
// The user collection is read fresh on every call. Matching is exact and
// case-sensitive. Any failure (blank input, unknown username, wrong password)
// comes back as apperror.ErrUnauthorized with the same message.
//
// TIMING:
// An unknown username still costs one bcrypt comparison (BurnCompare), so
// the response time doesn't tell a caller which usernames exist.
func (s *AccountService) ValidateUser(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.BurnCompare(password)
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("service: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	return user, nil
}

// ListUsers returns every registered user in storage order.
func (s *AccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing users: %w", err)
	}
	return users, nil
}

// UpdateProfile changes the email and/or password of the authenticated user.
// An empty email or newPassword leaves that field as it is. The username
// never changes.
func (s *AccountService) UpdateProfile(ctx context.Context, username, password, email, newPassword string) (*model.User, error) {
	user, err := s.ValidateUser(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if newPassword != "" {
		hash, err := s.passwords.Hash(newPassword)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service: updating profile of user %d: %w", user.ID, err)
	}

	s.logger.Info("profile updated",
		"user_id", user.ID,
		"email_changed", email != "",
		"password_changed", newPassword != "",
	)
	return user, nil
}

// DeleteAccount removes the authenticated user together with every post they
// wrote, and returns how many posts were removed.
func (s *AccountService) DeleteAccount(ctx context.Context, username, password string) (int, error) {
	user, err := s.ValidateUser(ctx, username, password)
	if err != nil {
		return 0, err
	}

	removed, err := s.users.DeleteUser(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("service: deleting account %d: %w", user.ID, err)
	}

	s.logger.Info("account deleted", "user_id", user.ID, "deleted_posts", removed)
	return removed, nil
}

type field struct {
	name  string
	value string
}

// requireFields returns a validation error naming the first blank field.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperror.ValidationFailed(f.name, f.name+" is required")
		}
	}
	return nil
}
