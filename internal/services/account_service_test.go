package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

func TestRegisterSeedsDefaultCategories(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)

	user := registerUser(t, accounts, "alice")
	if user.Username != "alice" || user.Role != core.RoleUser || user.ID == "" {
		t.Errorf("Register returned %+v", user)
	}

	categories, err := accounts.Categories(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(categories) != len(core.DefaultCategories) {
		t.Errorf("seeded %d categories, want %d", len(categories), len(core.DefaultCategories))
	}
}

func TestRegisterValidation(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)

	_, err := accounts.Register(context.Background(), core.Registration{
		Username: "ab",
		Email:    "not-an-email",
		Password: "short",
		Role:     core.Role("root"),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Register error = %v, want ValidationError", err)
	}
	if len(verr.Problems) != 4 {
		t.Errorf("got %d problems, want 4: %v", len(verr.Problems), verr.Problems)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)

	registerUser(t, accounts, "alice")

	_, err := accounts.Register(context.Background(), core.Registration{
		Username: "alice",
		Email:    "different@example.com",
		Password: "correct-horse",
		Role:     core.RoleUser,
	})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate register error = %v, want ErrDuplicateUser", err)
	}
}

func TestLoginAndRefresh(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)
	ctx := context.Background()

	registered := registerUser(t, accounts, "alice")

	pair, user, err := accounts.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Login user = %+v, want id %s", user, registered.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Login returned empty tokens")
	}

	access, err := accounts.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if access == "" {
		t.Error("Refresh returned empty access token")
	}

	if _, _, err := accounts.Login(ctx, "alice", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := accounts.Login(ctx, "nobody", "whatever"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestProfile(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)
	ctx := context.Background()

	user := registerUser(t, accounts, "alice")

	got, err := accounts.Profile(ctx, user.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("Profile = %+v", got)
	}

	if _, err := accounts.Profile(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Profile(unknown) error = %v, want ErrNotFound", err)
	}
}
