package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const testSecret = "services-test-secret"

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestSessions(t *testing.T, repo *storage.SQLiteRepository) *auth.Sessions {
	t.Helper()
	codec, err := auth.NewCodec([]byte(testSecret))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	// MinCost keeps the bcrypt work negligible in tests.
	return auth.NewSessions(repo, auth.NewHasher(bcrypt.MinCost), codec, 2)
}

func registerUser(t *testing.T, accounts *AccountService, username string) core.PublicUser {
	t.Helper()
	user, err := accounts.Register(context.Background(), core.Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
		Role:     core.RoleUser,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return user
}

func firstCategory(t *testing.T, accounts *AccountService, userID string) core.Category {
	t.Helper()
	categories, err := accounts.Categories(context.Background(), userID)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("no categories seeded")
	}
	return categories[0]
}

func boolPtr(b bool) *bool { return &b }

func fixedNow(date string) func() time.Time {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d.Time }
}
