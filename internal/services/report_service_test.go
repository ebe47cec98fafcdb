package services

import (
	"context"
	"testing"

	"fintrack/internal/core"
)

func TestSpendingReportDefaultsToCurrentMonth(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)
	reports := NewReportService(repo)
	reports.now = fixedNow("2026-03-15")
	transactions := NewTransactionService(repo, nil, nil, reports)
	ctx := context.Background()

	alice := registerUser(t, accounts, "alice")
	who := core.Identity{ID: alice.ID, Role: core.RoleUser}
	cat := firstCategory(t, accounts, alice.ID)

	spend := func(amount, date string) {
		t.Helper()
		_, err := transactions.Create(ctx, who, core.TransactionInput{
			Amount:     amount,
			Date:       date,
			CategoryID: cat.ID,
			IsExpense:  boolPtr(true),
		})
		if err != nil {
			t.Fatalf("Create transaction: %v", err)
		}
	}

	spend("10.00", "2026-03-05")
	spend("25.00", "2026-03-14")
	spend("99.00", "2026-02-28") // outside the default window

	report, err := reports.SpendingByCategory(ctx, who, nil, nil)
	if err != nil {
		t.Fatalf("SpendingByCategory: %v", err)
	}
	if report.Start.String() != "2026-03-01" || report.End.String() != "2026-03-15" {
		t.Errorf("default window = [%s, %s], want [2026-03-01, 2026-03-15]", report.Start, report.End)
	}
	if len(report.ByCategory) != 1 || report.ByCategory[0].Total.Cents != 3500 {
		t.Errorf("ByCategory = %+v, want one row totalling 3500", report.ByCategory)
	}
}

func TestSpendingReportCacheInvalidation(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)
	reports := NewReportService(repo)
	reports.now = fixedNow("2026-03-15")
	transactions := NewTransactionService(repo, nil, nil, reports)
	ctx := context.Background()

	alice := registerUser(t, accounts, "alice")
	who := core.Identity{ID: alice.ID, Role: core.RoleUser}
	cat := firstCategory(t, accounts, alice.ID)

	create := func(amount string) {
		t.Helper()
		_, err := transactions.Create(ctx, who, core.TransactionInput{
			Amount:     amount,
			Date:       "2026-03-10",
			CategoryID: cat.ID,
			IsExpense:  boolPtr(true),
		})
		if err != nil {
			t.Fatalf("Create transaction: %v", err)
		}
	}

	create("10.00")

	first, err := reports.SpendingByCategory(ctx, who, nil, nil)
	if err != nil {
		t.Fatalf("SpendingByCategory: %v", err)
	}
	if first.ByCategory[0].Total.Cents != 1000 {
		t.Fatalf("first report = %+v", first.ByCategory)
	}

	// A write through the transaction service drops the cached report, so
	// the next read sees the new total.
	create("5.00")

	second, err := reports.SpendingByCategory(ctx, who, nil, nil)
	if err != nil {
		t.Fatalf("SpendingByCategory: %v", err)
	}
	if second.ByCategory[0].Total.Cents != 1500 {
		t.Errorf("report after write = %+v, want total 1500", second.ByCategory)
	}
}

func TestSpendingReportExplicitRange(t *testing.T) {
	repo := newTestRepo(t)
	accounts := NewAccountService(repo, newTestSessions(t, repo), nil)
	reports := NewReportService(repo)
	transactions := NewTransactionService(repo, nil, nil, reports)
	ctx := context.Background()

	alice := registerUser(t, accounts, "alice")
	who := core.Identity{ID: alice.ID, Role: core.RoleUser}
	cat := firstCategory(t, accounts, alice.ID)

	_, err := transactions.Create(ctx, who, core.TransactionInput{
		Amount:     "42.00",
		Date:       "2025-12-31",
		CategoryID: cat.ID,
		IsExpense:  boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Create transaction: %v", err)
	}

	start, _ := core.ParseDate("2025-12-01")
	end, _ := core.ParseDate("2025-12-31")
	report, err := reports.SpendingByCategory(ctx, who, &start, &end)
	if err != nil {
		t.Fatalf("SpendingByCategory: %v", err)
	}
	if len(report.ByCategory) != 1 || report.ByCategory[0].Total.Cents != 4200 {
		t.Errorf("ByCategory = %+v, want one row totalling 4200", report.ByCategory)
	}
}
