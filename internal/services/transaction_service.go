package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/storage"
)

// TransactionService orchestrates transaction CRUD. Reads are scoped to the
// caller; single-resource operations fetch first and compare the owner, so a
// nonexistent id and someone else's id are reported differently (404 vs 403).
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	mirror     export.Mirror
	reports    *ReportService
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, mirror export.Mirror, reports *ReportService) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
		mirror:     mirror,
		reports:    reports,
	}
}

// Create validates the payload, checks the category belongs to the caller,
// and persists the transaction.
func (s *TransactionService) Create(ctx context.Context, who core.Identity, in core.TransactionInput) (storage.TransactionRow, error) {
	if err := validationError(in.Validate()); err != nil {
		return storage.TransactionRow{}, err
	}

	category, err := s.ownedCategory(ctx, who, in.CategoryID)
	if err != nil {
		return storage.TransactionRow{}, err
	}

	cents, _ := core.ParseDecimalToCents(in.Amount)
	date, _ := core.ParseDate(in.Date)

	t := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      who.ID,
		CategoryID:  category.ID,
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		IsExpense:   *in.IsExpense,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return storage.TransactionRow{}, fmt.Errorf("create transaction: %w", err)
	}

	s.invalidateReports(who.ID)
	publishAudit(ctx, s.amqpClient, amqp.EventTransactionCreated, who.ID, t.ID, "")
	s.mirrorAppend(ctx, t, category.Name)

	return storage.TransactionRow{Transaction: t, CategoryName: category.Name}, nil
}

// List returns the caller's transactions newest-first, optionally bounded by
// an inclusive date range.
func (s *TransactionService) List(ctx context.Context, who core.Identity, start, end *core.Date) ([]storage.TransactionRow, error) {
	return s.storage.ListTransactions(ctx, who.ID, start, end)
}

// Get returns one transaction if the caller owns it.
func (s *TransactionService) Get(ctx context.Context, who core.Identity, id string) (storage.TransactionRow, error) {
	t, err := s.ownedTransaction(ctx, who, id)
	if err != nil {
		return storage.TransactionRow{}, err
	}

	category, err := s.storage.CategoryByID(ctx, t.CategoryID)
	if err != nil {
		return storage.TransactionRow{}, fmt.Errorf("load category: %w", err)
	}
	return storage.TransactionRow{Transaction: t, CategoryName: category.Name}, nil
}

// Update replaces the mutable fields of an owned transaction. A changed
// category_id goes through the same ownership check as on create.
func (s *TransactionService) Update(ctx context.Context, who core.Identity, id string, in core.TransactionInput) (storage.TransactionRow, error) {
	t, err := s.ownedTransaction(ctx, who, id)
	if err != nil {
		return storage.TransactionRow{}, err
	}

	if err := validationError(in.Validate()); err != nil {
		return storage.TransactionRow{}, err
	}

	category, err := s.ownedCategory(ctx, who, in.CategoryID)
	if err != nil {
		return storage.TransactionRow{}, err
	}

	cents, _ := core.ParseDecimalToCents(in.Amount)
	date, _ := core.ParseDate(in.Date)

	t.CategoryID = category.ID
	t.Amount = core.Money{Cents: cents}
	t.Date = date
	t.Description = strings.TrimSpace(in.Description)
	t.IsExpense = *in.IsExpense

	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.TransactionRow{}, ErrNotFound
		}
		return storage.TransactionRow{}, fmt.Errorf("update transaction: %w", err)
	}

	s.invalidateReports(who.ID)
	publishAudit(ctx, s.amqpClient, amqp.EventTransactionUpdated, who.ID, t.ID, "")

	return storage.TransactionRow{Transaction: t, CategoryName: category.Name}, nil
}

// Delete removes an owned transaction.
func (s *TransactionService) Delete(ctx context.Context, who core.Identity, id string) error {
	t, err := s.ownedTransaction(ctx, who, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteTransaction(ctx, t.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.invalidateReports(who.ID)
	publishAudit(ctx, s.amqpClient, amqp.EventTransactionDeleted, who.ID, t.ID, "")
	return nil
}

func (s *TransactionService) ownedTransaction(ctx context.Context, who core.Identity, id string) (core.Transaction, error) {
	t, err := s.storage.TransactionByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	if t.UserID != who.ID {
		publishAudit(ctx, s.amqpClient, amqp.EventOwnershipRejected, who.ID, id, "transaction")
		return core.Transaction{}, ErrForbidden
	}
	return t, nil
}

func (s *TransactionService) ownedCategory(ctx context.Context, who core.Identity, categoryID string) (core.Category, error) {
	category, err := s.storage.CategoryByID(ctx, categoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, ErrInvalidCategory
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("load category: %w", err)
	}
	if category.UserID != who.ID {
		return core.Category{}, ErrInvalidCategory
	}
	return category, nil
}

func (s *TransactionService) invalidateReports(userID string) {
	if s.reports != nil {
		s.reports.InvalidateUser(userID)
	}
}

func (s *TransactionService) mirrorAppend(ctx context.Context, t core.Transaction, categoryName string) {
	if s.mirror == nil {
		return
	}
	rec := export.Record{
		Date:        t.Date.String(),
		Description: t.Description,
		Category:    categoryName,
		Amount:      t.Amount.Float64(),
		IsExpense:   t.IsExpense,
	}
	if err := s.mirror.Append(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to mirror transaction",
			"transaction_id", t.ID, "error", err)
	}
}
