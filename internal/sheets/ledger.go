// Package sheets mirrors expenses into a Google Sheets ledger. Each
// expense occupies one row keyed by its id in column A.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"frugal/internal/core"
)

type Ledger struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv builds a ledger client from service account credentials.
// Required: GOOGLE_SPREADSHEET_ID plus GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, sheetName string) (*Ledger, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if sheetName == "" {
		sheetName = "Expenses"
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Ledger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}

	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// AppendExpense writes one expense as a ledger row:
// id, date, habit id, name, amount.
func (l *Ledger) AppendExpense(ctx context.Context, e core.Expense) error {
	row := []any{
		e.ID,
		e.Date.UTC().Format("2006-01-02"),
		e.HabitID,
		e.Name,
		fmt.Sprintf("%d.%02d", e.Amount.Cents/100, e.Amount.Cents%100),
	}

	rng := fmt.Sprintf("%s!A:E", l.sheetName)
	_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, rng, &gsheet.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append expense row: %w", err)
	}
	return nil
}

// DeleteExpense clears the ledger row holding the expense id. A row
// that was never mirrored is not an error.
func (l *Ledger) DeleteExpense(ctx context.Context, expenseID string) error {
	rng := fmt.Sprintf("%s!A:A", l.sheetName)
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read ledger ids: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		id, ok := row[0].(string)
		if !ok || id != expenseID {
			continue
		}

		clearRange := fmt.Sprintf("%s!A%d:E%d", l.sheetName, i+1, i+1)
		_, err := l.svc.Spreadsheets.Values.Clear(l.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("clear ledger row: %w", err)
		}
		return nil
	}
	return nil
}
