package http

import (
	"errors"
	"fmt"
	"net/http"

	"frugal/internal/core"
)

type habitRequest struct {
	Name       string     `json:"name"`
	Budget     core.Money `json:"budget"`
	BudgetType string     `json:"budgetType"`
	Icon       string     `json:"icon"`
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h, err := s.habits.Create(r.Context(), core.Habit{
		UserID:     UserID(r.Context()),
		Name:       req.Name,
		Budget:     req.Budget,
		BudgetType: req.BudgetType,
		Icon:       req.Icon,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateHabitName) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("A habit with the name %q already exists!", req.Name))
			return
		}
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.habits.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	h, err := s.habits.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h, err := s.habits.Update(r.Context(), r.PathValue("id"), core.Habit{
		Name:       req.Name,
		Budget:     req.Budget,
		BudgetType: req.BudgetType,
		Icon:       req.Icon,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateHabitName) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("A habit with the name %q already exists!", req.Name))
			return
		}
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	n, err := s.habits.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": n})
}
