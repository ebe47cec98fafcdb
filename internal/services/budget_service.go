package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// BudgetService manages per-category spending caps and computes how much of
// each cap is already spent in the current period window.
type BudgetService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewBudgetService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *BudgetService {
	return &BudgetService{
		storage:    storage,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// Create validates the payload and persists a budget. One budget per
// category and period; a second one is rejected as a duplicate.
func (s *BudgetService) Create(ctx context.Context, who core.Identity, in core.BudgetInput) (storage.BudgetRow, error) {
	if err := validationError(in.Validate()); err != nil {
		return storage.BudgetRow{}, err
	}

	category, err := s.ownedCategory(ctx, who, in.CategoryID)
	if err != nil {
		return storage.BudgetRow{}, err
	}

	cents, _ := core.ParseDecimalToCents(in.Amount)

	b := core.Budget{
		ID:         uuid.NewString(),
		UserID:     who.ID,
		CategoryID: category.ID,
		Amount:     core.Money{Cents: cents},
		Period:     in.Period,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.storage.CreateBudget(ctx, b); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return storage.BudgetRow{}, ErrDuplicateBudget
		}
		return storage.BudgetRow{}, fmt.Errorf("create budget: %w", err)
	}

	publishAudit(ctx, s.amqpClient, amqp.EventBudgetCreated, who.ID, b.ID, "")

	return storage.BudgetRow{Budget: b, CategoryName: category.Name}, nil
}

// List returns the caller's budgets, each annotated with the amount spent in
// its current period window: rolling 7 days for weekly, since the 1st for
// monthly, since Jan 1 for yearly.
func (s *BudgetService) List(ctx context.Context, who core.Identity) ([]core.BudgetStatus, error) {
	budgets, err := s.storage.ListBudgets(ctx, who.ID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	now := s.now().UTC()
	statuses := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.storage.SpentSince(ctx, who.ID, b.CategoryID, b.Period.Start(now))
		if err != nil {
			return nil, fmt.Errorf("compute spent for budget %s: %w", b.ID, err)
		}
		statuses = append(statuses, core.BudgetStatus{
			Budget:       b.Budget,
			CategoryName: b.CategoryName,
			Spent:        core.Money{Cents: spent},
		})
	}
	return statuses, nil
}

func (s *BudgetService) ownedCategory(ctx context.Context, who core.Identity, categoryID string) (core.Category, error) {
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
