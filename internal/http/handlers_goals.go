package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"frugal/internal/core"
)

type goalRequest struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Type   string     `json:"type"`
	Name   string     `json:"name"`
	Period string     `json:"period"`
	Target core.Money `json:"target"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := s.goals.Create(r.Context(), core.Goal{
		UserID:  UserID(r.Context()),
		HabitID: r.PathValue("id"),
		Start:   req.Start,
		End:     req.End,
		Type:    req.Type,
		Name:    req.Name,
		Period:  req.Period,
		Target:  req.Target,
	})
	if err != nil {
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleGetGoal returns the goal, or 200 with an empty body when the
// id resolves to nothing.
func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.goals.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, core.ErrNotFound) {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := s.goals.Update(r.Context(), r.PathValue("id"), core.Goal{
		End:    req.End,
		Type:   req.Type,
		Name:   req.Name,
		Period: req.Period,
		Target: req.Target,
	})
	if err != nil {
		writeServiceError(w, r, err, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	n, err := s.goals.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": n})
}

func (s *Server) handleListHabitGoals(w http.ResponseWriter, r *http.Request) {
	filter, err := parseGoalFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goals, err := s.goals.ListForHabit(r.Context(), UserID(r.Context()), r.PathValue("id"), filter)
	if err != nil {
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleListAllGoals(w http.ResponseWriter, r *http.Request) {
	filter, err := parseGoalFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goals, err := s.goals.ListForUser(r.Context(), UserID(r.Context()), filter)
	if err != nil {
		writeServiceError(w, r, err, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// parseGoalFilter reads the optional query filters. start and end are
// RFC 3339 timestamps and select goals fully contained in the window.
func parseGoalFilter(r *http.Request) (core.GoalFilter, error) {
	var f core.GoalFilter
	q := r.URL.Query()

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("Invalid start date")
		}
		f.Start = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("Invalid end date")
		}
		f.End = &t
	}
	if v := q.Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("Invalid active flag")
		}
		f.Active = &b
	}
	if v := q.Get("pass"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("Invalid pass flag")
		}
		f.Pass = &b
	}
	if v := q.Get("type"); v != "" {
		f.Type = &v
	}
	return f, nil
}
