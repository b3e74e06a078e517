package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionSync   = "sync"
	ActionDelete = "delete"
)

// ExpenseSyncMessage asks the worker to mirror one expense into the
// ledger. It carries only the id; the worker fetches the row itself.
type ExpenseSyncMessage struct {
	ExpenseID string    `json:"expenseId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncMessage(expenseID string) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		ExpenseID: expenseID,
		Action:    ActionSync,
		Timestamp: time.Now(),
	}
}

func NewExpenseDeleteMessage(expenseID string) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		ExpenseID: expenseID,
		Action:    ActionDelete,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
