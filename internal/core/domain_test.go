package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"user", "elevated"} {
		if _, err := ParseRole(valid); err != nil {
			t.Errorf("ParseRole(%q): %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "admin", "User", "root"} {
		if _, err := ParseRole(invalid); err == nil {
			t.Errorf("ParseRole(%q) accepted an unknown role", invalid)
		}
	}
}

func TestUserPublicOmitsHash(t *testing.T) {
	u := User{
		ID:           "id",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         RoleUser,
	}

	data, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) == "" || json.Valid(data) == false {
		t.Fatal("unexpected marshal output")
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["password_hash"]; ok {
		t.Error("public user serializes the password hash")
	}
	if decoded["username"] != "alice" {
		t.Errorf("public user = %v", decoded)
	}
}

func TestBudgetPeriodStart(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		period BudgetPeriod
		want   string
	}{
		{PeriodWeekly, "2026-03-08"},
		{PeriodMonthly, "2026-03-01"},
		{PeriodYearly, "2026-01-01"},
	}
	for _, tt := range tests {
		if got := tt.period.Start(now).String(); got != tt.want {
			t.Errorf("%s.Start() = %s, want %s", tt.period, got, tt.want)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-03-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2026-03-05"` {
		t.Errorf("marshal = %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != "2026-03-05" {
		t.Errorf("round trip = %s", back)
	}

	if err := json.Unmarshal([]byte(`"05/03/2026"`), &back); err == nil {
		t.Error("unmarshal accepted a non-ISO date")
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     RoleUser,
	}
	if problems := valid.Validate(); len(problems) != 0 {
		t.Errorf("valid registration produced problems: %v", problems)
	}

	tests := []struct {
		name   string
		mutate func(*Registration)
	}{
		{"short username", func(r *Registration) { r.Username = "ab" }},
		{"long username", func(r *Registration) { r.Username = string(make([]byte, 51)) }},
		{"bad email", func(r *Registration) { r.Email = "not an email" }},
		{"email without domain dot", func(r *Registration) { r.Email = "a@b" }},
		{"short password", func(r *Registration) { r.Password = "1234567" }},
		{"unknown role", func(r *Registration) { r.Role = "admin" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if problems := r.Validate(); len(problems) == 0 {
				t.Error("expected at least one problem")
			}
		})
	}
}

func TestTransactionInputValidate(t *testing.T) {
	yes := true
	valid := TransactionInput{
		Amount:      "12.34",
		Date:        "2026-03-05",
		CategoryID:  uuid.NewString(),
		Description: "ok",
		IsExpense:   &yes,
	}
	if problems := valid.Validate(); len(problems) != 0 {
		t.Errorf("valid input produced problems: %v", problems)
	}

	missing := TransactionInput{}
	problems := missing.Validate()
	// Amount, date, category, and is_expense are all reported at once.
	if len(problems) != 4 {
		t.Errorf("empty input produced %d problems, want 4: %v", len(problems), problems)
	}

	longDesc := valid
	longDesc.Description = string(make([]byte, 201))
	if problems := longDesc.Validate(); len(problems) != 1 {
		t.Errorf("long description produced %v", problems)
	}
}

func TestBudgetInputValidate(t *testing.T) {
	valid := BudgetInput{
		CategoryID: uuid.NewString(),
		Amount:     "100",
		Period:     PeriodMonthly,
	}
	if problems := valid.Validate(); len(problems) != 0 {
		t.Errorf("valid input produced problems: %v", problems)
	}

	bad := BudgetInput{CategoryID: "x", Amount: "-1", Period: "daily"}
	if problems := bad.Validate(); len(problems) != 3 {
		t.Errorf("bad input produced %d problems, want 3", len(problems))
	}
}
