package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	maxRefLength    = 25
	minHabitName    = 3
	maxHabitName    = 50
	maxLabelLength  = 25
	maxBudgetType   = 25
	maxIconLength   = 255
	minBudgetCents  = 1
	maxBudgetCents  = 1_000_000_000
	maxEmailLength  = 255
	minPasswordSize = 8
)

type (
	// Goal is a time-bounded target tied to a habit. At most one goal per
	// habit may be active at any time; the expiry scheduler clears Active
	// once End has passed. Pass is set by an external evaluation step and
	// is never computed here.
	Goal struct {
		ID      string    `json:"id"`
		UserID  string    `json:"userId"`
		HabitID string    `json:"habitId"`
		Start   time.Time `json:"start"`
		End     time.Time `json:"end"`
		Type    string    `json:"type"`
		Name    string    `json:"name"`
		Period  string    `json:"period"`
		Target  Money     `json:"target"`
		Pass    bool      `json:"pass"`
		Active  bool      `json:"active"`
	}

	// Habit is a user-defined spending category with a budget.
	Habit struct {
		ID         string `json:"id"`
		UserID     string `json:"userId"`
		Name       string `json:"name"`
		Budget     Money  `json:"budget"`
		BudgetType string `json:"budgetType"`
		Icon       string `json:"icon,omitempty"`
	}

	// Expense is a single spend logged against a habit.
	Expense struct {
		ID      string    `json:"id"`
		UserID  string    `json:"userId"`
		HabitID string    `json:"habitId"`
		Name    string    `json:"name"`
		Amount  Money     `json:"amount"`
		Date    time.Time `json:"date"`
	}

	// Urge records a moment the user wanted to spend but did not.
	Urge struct {
		ID      string    `json:"id"`
		UserID  string    `json:"userId"`
		HabitID string    `json:"habitId"`
		Date    time.Time `json:"date"`
	}

	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		Verified     bool      `json:"verified"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// VerifyToken is a single-use token mailed to a user for account
	// verification or password reset.
	VerifyToken struct {
		Token     string
		UserID    string
		Purpose   string
		CreatedAt time.Time
	}

	// GoalFilter narrows goal listings. Start and End apply only when both
	// are set, and they select by strict containment: a goal matches only
	// when its whole [Start, End] window lies inside [filter.Start,
	// filter.End]. A goal that merely overlaps the filter window is
	// excluded.
	GoalFilter struct {
		Start  *time.Time
		End    *time.Time
		Active *bool
		Pass   *bool
		Type   *string
	}
)

const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

var (
	ErrInvalidTimeRange    = errors.New("End date must be after Start date!")
	ErrDuplicateActiveGoal = errors.New("There is already an active goal for this habit!")
	ErrNotFound            = errors.New("not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrDuplicateHabitName  = errors.New("duplicate habit name")
	ErrUserNotFound        = errors.New("user doesn't exist")
	ErrHabitNotFound       = errors.New("Habit not found for Id")
	ErrEmailTaken          = errors.New("email already registered")
)

// FieldError describes a single invalid field in a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is the full list of field errors for a payload.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func requiredRef(errs ValidationError, field, value string) ValidationError {
	if strings.TrimSpace(value) == "" {
		return append(errs, FieldError{field, "is required"})
	}
	if len(value) > maxRefLength {
		return append(errs, FieldError{field, fmt.Sprintf("must be at most %d characters", maxRefLength)})
	}
	return errs
}

// Validate checks the goal payload field by field. The time-window rule
// (End strictly after Start) is checked separately via ValidateWindow so
// callers can surface it as its own error.
func (g Goal) Validate() error {
	var errs ValidationError

	errs = requiredRef(errs, "userId", g.UserID)
	errs = requiredRef(errs, "habitId", g.HabitID)
	errs = requiredRef(errs, "type", g.Type)
	errs = requiredRef(errs, "name", g.Name)
	if strings.TrimSpace(g.Period) == "" {
		errs = append(errs, FieldError{"period", "is required"})
	}
	if g.Start.IsZero() {
		errs = append(errs, FieldError{"start", "is required"})
	}
	if g.End.IsZero() {
		errs = append(errs, FieldError{"end", "is required"})
	}
	if g.Target.Cents == 0 {
		errs = append(errs, FieldError{"target", "is required"})
	} else if g.Target.Cents < 0 {
		errs = append(errs, FieldError{"target", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateUpdate checks the fields an update payload may carry. The
// identity fields and start come from the stored record, not the
// payload, so they are not checked here.
func (g Goal) ValidateUpdate() error {
	var errs ValidationError

	errs = requiredRef(errs, "type", g.Type)
	errs = requiredRef(errs, "name", g.Name)
	if strings.TrimSpace(g.Period) == "" {
		errs = append(errs, FieldError{"period", "is required"})
	}
	if g.End.IsZero() {
		errs = append(errs, FieldError{"end", "is required"})
	}
	if g.Target.Cents == 0 {
		errs = append(errs, FieldError{"target", "is required"})
	} else if g.Target.Cents < 0 {
		errs = append(errs, FieldError{"target", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateWindow enforces the temporal invariant on an already
// schema-valid goal.
func (g Goal) ValidateWindow() error {
	if !g.End.After(g.Start) {
		return ErrInvalidTimeRange
	}
	return nil
}

func (h Habit) Validate() error {
	var errs ValidationError

	errs = requiredRef(errs, "userId", h.UserID)
	name := strings.TrimSpace(h.Name)
	switch {
	case name == "":
		errs = append(errs, FieldError{"name", "is required"})
	case len(name) < minHabitName || len(name) > maxHabitName:
		errs = append(errs, FieldError{"name", fmt.Sprintf("must be between %d and %d characters", minHabitName, maxHabitName)})
	}
	if h.Budget.Cents < minBudgetCents || h.Budget.Cents > maxBudgetCents {
		errs = append(errs, FieldError{"budget", "must be a positive amount"})
	}
	bt := strings.TrimSpace(h.BudgetType)
	if bt == "" || len(bt) > maxBudgetType {
		errs = append(errs, FieldError{"budgetType", fmt.Sprintf("must be between 1 and %d characters", maxBudgetType)})
	}
	if len(h.Icon) > maxIconLength {
		errs = append(errs, FieldError{"icon", fmt.Sprintf("must be at most %d characters", maxIconLength)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (e Expense) Validate() error {
	var errs ValidationError

	errs = requiredRef(errs, "userId", e.UserID)
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, FieldError{"name", "is required"})
	} else if len(e.Name) > maxHabitName {
		errs = append(errs, FieldError{"name", fmt.Sprintf("must be at most %d characters", maxHabitName)})
	}
	if e.Amount.Cents <= 0 {
		errs = append(errs, FieldError{"amount", "must be a positive amount"})
	}
	if e.Date.IsZero() {
		errs = append(errs, FieldError{"date", "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (u Urge) Validate() error {
	var errs ValidationError

	errs = requiredRef(errs, "userId", u.UserID)
	errs = requiredRef(errs, "habitId", u.HabitID)
	if u.Date.IsZero() {
		errs = append(errs, FieldError{"date", "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateRegistration checks the fields a new account is created from.
// The password is validated in plaintext form, before hashing.
func (u User) ValidateRegistration(password string) error {
	var errs ValidationError

	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, FieldError{"name", "is required"})
	} else if len(u.Name) > maxHabitName {
		errs = append(errs, FieldError{"name", fmt.Sprintf("must be at most %d characters", maxHabitName)})
	}
	email := strings.TrimSpace(u.Email)
	switch {
	case email == "":
		errs = append(errs, FieldError{"email", "is required"})
	case len(email) > maxEmailLength || !strings.Contains(email, "@"):
		errs = append(errs, FieldError{"email", "must be a valid email address"})
	}
	if len(password) < minPasswordSize {
		errs = append(errs, FieldError{"password", fmt.Sprintf("must be at least %d characters", minPasswordSize)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
