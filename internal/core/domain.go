package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a closed enumeration. Tokens carrying any other value fail
// verification instead of flowing through as a free-form string.
type Role string

const (
	RoleUser     Role = "user"
	RoleElevated Role = "elevated"
)

// ParseRole maps a raw string onto the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleElevated:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Identity is the authenticated subject derived from credentials or a
// verified access token. It is never persisted outside tokens.
type Identity struct {
	ID   string
	Role Role
}

// User is the stored credential record. PasswordHash never leaves the
// storage/auth boundary; the HTTP layer serializes PublicUser instead.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Public returns the view of the user that is safe to hand to clients.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is a user-owned transaction category.
type Category struct {
	ID     string
	UserID string
	Name   string
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string
	UserID      string
	CategoryID  string
	Amount      Money
	Date        Date
	Description string
	IsExpense   bool
	CreatedAt   time.Time
}

// BudgetPeriod enumerates the supported budget windows.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Start returns the beginning of the current period window relative to now:
// weekly is a rolling 7 days, monthly starts on the 1st, yearly on Jan 1.
func (p BudgetPeriod) Start(now time.Time) Date {
	switch p {
	case PeriodWeekly:
		t := now.AddDate(0, 0, -7)
		return NewDate(t.Year(), int(t.Month()), t.Day())
	case PeriodYearly:
		return NewDate(now.Year(), 1, 1)
	default:
		return NewDate(now.Year(), int(now.Month()), 1)
	}
}

// Budget caps spending for one category over a repeating period.
type Budget struct {
	ID         string
	UserID     string
	CategoryID string
	Amount     Money
	Period     BudgetPeriod
	CreatedAt  time.Time
}

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
)

// Date is a calendar day without a time component, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Registration carries the fields of a signup request before hashing.
type Registration struct {
	Username string
	Email    string
	Password string
	Role     Role
}

// Validate returns every problem with the registration, not just the first,
// so the API can report them all at once.
func (r Registration) Validate() []string {
	var problems []string

	username := strings.TrimSpace(r.Username)
	if len(username) < 3 {
		problems = append(problems, "username must be at least 3 characters long")
	}
	if len(username) > 50 {
		problems = append(problems, "username must not exceed 50 characters")
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		problems = append(problems, "valid email address is required")
	}
	if len(r.Password) < 8 {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if !r.Role.Valid() {
		problems = append(problems, `role must be either "user" or "elevated"`)
	}

	return problems
}

// TransactionInput is the validated payload for creating or updating a
// transaction. Amount arrives as the raw decimal string from the request.
type TransactionInput struct {
	Amount      string
	Date        string
	CategoryID  string
	Description string
	IsExpense   *bool
}

func (in TransactionInput) Validate() []string {
	var problems []string

	if _, err := ParseDecimalToCents(in.Amount); err != nil {
		problems = append(problems, "amount must be a number greater than 0")
	}
	if _, err := ParseDate(in.Date); err != nil {
		problems = append(problems, "date must be in YYYY-MM-DD format")
	}
	if !validUUID(in.CategoryID) {
		problems = append(problems, "category_id must be a valid UUID")
	}
	if in.IsExpense == nil {
		problems = append(problems, "is_expense field is required")
	}
	if len(in.Description) > 200 {
		problems = append(problems, "description must not exceed 200 characters")
	}

	return problems
}

// BudgetInput is the validated payload for creating a budget.
type BudgetInput struct {
	CategoryID string
	Amount     string
	Period     BudgetPeriod
}

func (in BudgetInput) Validate() []string {
	var problems []string

	if !validUUID(in.CategoryID) {
		problems = append(problems, "category_id must be a valid UUID")
	}
	if _, err := ParseDecimalToCents(in.Amount); err != nil {
		problems = append(problems, "amount must be a number greater than 0")
	}
	if !in.Period.Valid() {
		problems = append(problems, "period must be one of: weekly, monthly, yearly")
	}

	return problems
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// DefaultCategories are seeded for every new user at registration.
var DefaultCategories = []string{
	"Salary",
	"Groceries",
	"Entertainment",
	"Utilities",
	"Transportation",
	"Dining Out",
	"Healthcare",
	"Shopping",
	"Rent",
	"Other",
}
