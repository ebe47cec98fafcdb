package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AccountService handles registration, login, token refresh, and profile
// lookups. It is the only service that touches password material, and only
// through the auth package.
type AccountService struct {
	storage    *storage.SQLiteRepository
	sessions   *auth.Sessions
	amqpClient *amqp.Client
}

func NewAccountService(storage *storage.SQLiteRepository, sessions *auth.Sessions, amqpClient *amqp.Client) *AccountService {
	return &AccountService{
		storage:    storage,
		sessions:   sessions,
		amqpClient: amqpClient,
	}
}

// Register validates the payload, hashes the password, creates the user, and
// seeds the default categories.
func (s *AccountService) Register(ctx context.Context, reg core.Registration) (core.PublicUser, error) {
	if err := validationError(reg.Validate()); err != nil {
		return core.PublicUser{}, err
	}

	hash, err := s.sessions.HashPassword(ctx, reg.Password)
	if err != nil {
		return core.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(reg.Username),
		Email:        strings.ToLower(strings.TrimSpace(reg.Email)),
		PasswordHash: hash,
		Role:         reg.Role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return core.PublicUser{}, ErrDuplicateUser
		}
		return core.PublicUser{}, fmt.Errorf("create user: %w", err)
	}

	categories := make([]core.Category, 0, len(core.DefaultCategories))
	for _, name := range core.DefaultCategories {
		categories = append(categories, core.Category{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Name:   name,
		})
	}
	if err := s.storage.CreateCategories(ctx, categories); err != nil {
		return core.PublicUser{}, fmt.Errorf("seed default categories: %w", err)
	}

	publishAudit(ctx, s.amqpClient, amqp.EventRegister, user.ID, "", user.Username)

	return user.Public(), nil
}

// Login delegates credential checking to the session issuer and records the
// outcome on the audit queue.
func (s *AccountService) Login(ctx context.Context, username, password string) (auth.TokenPair, core.PublicUser, error) {
	pair, user, err := s.sessions.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			publishAudit(ctx, s.amqpClient, amqp.EventLoginFailure, "", "", strings.TrimSpace(username))
		}
		return auth.TokenPair{}, core.PublicUser{}, err
	}

	publishAudit(ctx, s.amqpClient, amqp.EventLoginSuccess, user.ID, "", "")
	return pair, user.Public(), nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	access, err := s.sessions.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	publishAudit(ctx, s.amqpClient, amqp.EventTokenRefresh, "", "", "")
	return access, nil
}

// Profile returns the public view of the authenticated user.
func (s *AccountService) Profile(ctx context.Context, userID string) (core.PublicUser, error) {
	user, err := s.storage.UserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.PublicUser{}, ErrNotFound
	}
	if err != nil {
		return core.PublicUser{}, fmt.Errorf("load user: %w", err)
	}
	return user.Public(), nil
}

// Categories lists the user's categories sorted by name.
func (s *AccountService) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, userID)
}
