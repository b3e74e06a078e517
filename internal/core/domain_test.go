package core

import (
	"errors"
	"testing"
	"time"
)

func validGoal() Goal {
	return Goal{
		UserID:  "u1",
		HabitID: "h1",
		Start:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		Type:    "micro_budget",
		Name:    "coffee budget",
		Period:  "week",
		Target:  Money{Cents: 10000},
	}
}

func TestGoalValidate(t *testing.T) {
	if err := validGoal().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Goal)
		field  string
	}{
		{"missing userId", func(g *Goal) { g.UserID = "" }, "userId"},
		{"missing habitId", func(g *Goal) { g.HabitID = " " }, "habitId"},
		{"long habitId", func(g *Goal) { g.HabitID = "abcdefghijklmnopqrstuvwxyz" }, "habitId"},
		{"missing type", func(g *Goal) { g.Type = "" }, "type"},
		{"missing name", func(g *Goal) { g.Name = "" }, "name"},
		{"missing period", func(g *Goal) { g.Period = "" }, "period"},
		{"missing start", func(g *Goal) { g.Start = time.Time{} }, "start"},
		{"missing end", func(g *Goal) { g.End = time.Time{} }, "end"},
		{"missing target", func(g *Goal) { g.Target = Money{} }, "target"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := validGoal()
			tc.mutate(&g)
			err := g.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range verr {
				if fe.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected field %q in %v", tc.field, verr)
			}
		})
	}
}

func TestGoalValidateWindow(t *testing.T) {
	g := validGoal()
	if err := g.ValidateWindow(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	g.End = g.Start
	if err := g.ValidateWindow(); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("equal start/end: expected ErrInvalidTimeRange, got %v", err)
	}

	g.End = g.Start.Add(-time.Hour)
	if err := g.ValidateWindow(); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("end before start: expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestHabitValidate(t *testing.T) {
	good := Habit{
		UserID:     "u1",
		Name:       "coffee",
		Budget:     Money{Cents: 5000},
		BudgetType: "week",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Habit{
		{UserID: "", Name: "coffee", Budget: Money{Cents: 1}, BudgetType: "week"},
		{UserID: "u1", Name: "ab", Budget: Money{Cents: 1}, BudgetType: "week"}, // too short
		{UserID: "u1", Name: "coffee", Budget: Money{Cents: 0}, BudgetType: "week"},
		{UserID: "u1", Name: "coffee", Budget: Money{Cents: 2_000_000_000}, BudgetType: "week"},
		{UserID: "u1", Name: "coffee", Budget: Money{Cents: 1}, BudgetType: ""},
	}
	for i, h := range bads {
		if err := h.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		UserID: "u1",
		Name:   "latte",
		Amount: Money{Cents: 450},
		Date:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{UserID: "", Name: "latte", Amount: Money{Cents: 1}, Date: good.Date},
		{UserID: "u1", Name: "", Amount: Money{Cents: 1}, Date: good.Date},
		{UserID: "u1", Name: "latte", Amount: Money{Cents: 0}, Date: good.Date},
		{UserID: "u1", Name: "latte", Amount: Money{Cents: 1}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestUrgeValidate(t *testing.T) {
	good := Urge{UserID: "u1", HabitID: "h1", Date: time.Now()}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Urge{HabitID: "h1", Date: time.Now()}).Validate(); err == nil {
		t.Fatalf("expected error for missing userId")
	}
	if err := (Urge{UserID: "u1", HabitID: "h1"}).Validate(); err == nil {
		t.Fatalf("expected error for missing date")
	}
}

func TestUserValidateRegistration(t *testing.T) {
	u := User{Name: "Ada", Email: "ada@example.com"}
	if err := u.ValidateRegistration("longenough"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := u.ValidateRegistration("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := (User{Name: "Ada", Email: "nope"}).ValidateRegistration("longenough"); err == nil {
		t.Fatalf("expected error for bad email")
	}
}
