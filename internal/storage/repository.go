// Package storage implements the SQLite persistence layer. All queries are
// scoped or checked against the owning user by the services layer; storage
// itself enforces uniqueness (username, email, budget triple) and surfaces
// violations as ErrDuplicate.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isUniqueViolation matches the sqlite unique-constraint error without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt.UTC().Format(timeLayout))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: username or email taken", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, created_at
		 FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, created_at
		 FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var (
		u         core.User
		role      string
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = core.Role(role)
	u.CreatedAt = parseStoredTime(createdAt)
	return u, nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategories(ctx context.Context, categories []core.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, user_id, name) VALUES (?, ?, ?)`,
			c.ID, c.UserID, c.Name); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: category %q", ErrDuplicate, c.Name)
			}
			return fmt.Errorf("insert category: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit categories: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) CategoryByID(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// --- transactions ---

// TransactionRow is a transaction joined with its category name, the shape
// list and report queries return.
type TransactionRow struct {
	core.Transaction
	CategoryName string
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, amount_cents, date, description, is_expense, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.CategoryID, t.Amount.Cents, t.Date.String(), t.Description,
		boolToInt(t.IsExpense), t.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's transactions newest-first, optionally
// bounded by an inclusive [start, end] date range.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, start, end *core.Date) ([]TransactionRow, error) {
	query := `SELECT t.id, t.user_id, t.category_id, t.amount_cents, t.date, t.description,
	                 t.is_expense, t.created_at, c.name
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          WHERE t.user_id = ?`
	args := []any{userID}

	if start != nil {
		query += ` AND t.date >= ?`
		args = append(args, start.String())
	}
	if end != nil {
		query += ` AND t.date <= ?`
		args = append(args, end.String())
	}
	query += ` ORDER BY t.date DESC, t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []TransactionRow
	for rows.Next() {
		row, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) TransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	var (
		t         core.Transaction
		date      string
		isExpense int
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, date, description, is_expense, created_at
		 FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Amount.Cents, &date, &t.Description, &isExpense, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.Date, _ = core.ParseDate(date)
	t.IsExpense = isExpense != 0
	t.CreatedAt = parseStoredTime(createdAt)
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, amount_cents = ?, date = ?, description = ?, is_expense = ?
		 WHERE id = ?`,
		t.CategoryID, t.Amount.Cents, t.Date.String(), t.Description, boolToInt(t.IsExpense), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRowAffected(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRowAffected(res)
}

// --- budgets ---

// BudgetRow is a budget joined with its category name.
type BudgetRow struct {
	core.Budget
	CategoryName string
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category_id, amount_cents, period, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, b.Amount.Cents, string(b.Period), b.CreatedAt.UTC().Format(timeLayout))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: budget for this category and period", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]BudgetRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.category_id, b.amount_cents, b.period, b.created_at, c.name
		 FROM budgets b
		 JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var result []BudgetRow
	for rows.Next() {
		var (
			row       BudgetRow
			period    string
			createdAt string
		)
		if err := rows.Scan(&row.ID, &row.UserID, &row.CategoryID, &row.Amount.Cents,
			&period, &createdAt, &row.CategoryName); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		row.Period = core.BudgetPeriod(period)
		row.CreatedAt = parseStoredTime(createdAt)
		result = append(result, row)
	}
	return result, rows.Err()
}

// SpentSince sums expense transactions for one category from the given date
// onward, in cents.
func (r *SQLiteRepository) SpentSince(ctx context.Context, userID, categoryID string, since core.Date) (int64, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM transactions
		 WHERE user_id = ? AND category_id = ? AND is_expense = 1 AND date >= ?`,
		userID, categoryID, since.String()).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("sum spending: %w", err)
	}
	return cents, nil
}

// SpendingByCategory aggregates expense totals per category name over an
// inclusive date range, largest first.
func (r *SQLiteRepository) SpendingByCategory(ctx context.Context, userID string, start, end core.Date) ([]core.CategorySpending, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, SUM(t.amount_cents)
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.is_expense = 1 AND t.date >= ? AND t.date <= ?
		 GROUP BY c.name
		 ORDER BY SUM(t.amount_cents) DESC`,
		userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	defer rows.Close()

	var result []core.CategorySpending
	for rows.Next() {
		var (
			cs    core.CategorySpending
			cents int64
		)
		if err := rows.Scan(&cs.CategoryName, &cents); err != nil {
			return nil, fmt.Errorf("scan spending: %w", err)
		}
		cs.Total = core.Money{Cents: cents}
		result = append(result, cs)
	}
	return result, rows.Err()
}

// --- audit events ---

// AuditEvent is a consumed audit message persisted by the worker.
type AuditEvent struct {
	Event      string
	UserID     string
	ResourceID string
	Detail     string
	OccurredAt time.Time
}

func (r *SQLiteRepository) InsertAuditEvent(ctx context.Context, e AuditEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_events (event, user_id, resource_id, detail, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Event, e.UserID, e.ResourceID, e.Detail, e.OccurredAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountAuditEvents(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_events WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactionRow(rows rowScanner) (TransactionRow, error) {
	var (
		row       TransactionRow
		date      string
		isExpense int
		createdAt string
	)
	if err := rows.Scan(&row.ID, &row.UserID, &row.CategoryID, &row.Amount.Cents,
		&date, &row.Description, &isExpense, &createdAt, &row.CategoryName); err != nil {
		return TransactionRow{}, fmt.Errorf("scan transaction: %w", err)
	}
	row.Date, _ = core.ParseDate(date)
	row.IsExpense = isExpense != 0
	row.CreatedAt = parseStoredTime(createdAt)
	return row, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
