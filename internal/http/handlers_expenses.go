package http

import (
	"net/http"
	"time"

	"frugal/internal/core"
)

type expenseRequest struct {
	HabitID string     `json:"habitId"`
	Name    string     `json:"name"`
	Amount  core.Money `json:"amount"`
	Date    time.Time  `json:"date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := s.expenses.Create(r.Context(), core.Expense{
		UserID:  UserID(r.Context()),
		HabitID: req.HabitID,
		Name:    req.Name,
		Amount:  req.Amount,
		Date:    req.Date,
	})
	if err != nil {
		writeServiceError(w, r, err, "Expense not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Expense not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	var start, end *time.Time
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date")
			return
		}
		start = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date")
			return
		}
		end = &t
	}

	expenses, err := s.expenses.List(r.Context(), UserID(r.Context()), start, end)
	if err != nil {
		writeServiceError(w, r, err, "Expense not found")
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := s.expenses.Update(r.Context(), r.PathValue("id"), core.Expense{
		HabitID: req.HabitID,
		Name:    req.Name,
		Amount:  req.Amount,
		Date:    req.Date,
	})
	if err != nil {
		writeServiceError(w, r, err, "Expense not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	n, err := s.expenses.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Expense not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": n})
}
