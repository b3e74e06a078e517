package http

import (
	"net/http"
	"time"

	"frugal/internal/core"
)

type urgeRequest struct {
	Date time.Time `json:"date"`
}

func (s *Server) handleCreateUrge(w http.ResponseWriter, r *http.Request) {
	var req urgeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := s.urges.Create(r.Context(), core.Urge{
		UserID:  UserID(r.Context()),
		HabitID: r.PathValue("id"),
		Date:    req.Date,
	})
	if err != nil {
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleListHabitUrges(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseUrgeWindow(w, r)
	if !ok {
		return
	}

	urges, err := s.urges.ListForHabit(r.Context(), UserID(r.Context()), r.PathValue("id"), start, end)
	if err != nil {
		writeServiceError(w, r, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, urges)
}

func (s *Server) handleListAllUrges(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseUrgeWindow(w, r)
	if !ok {
		return
	}

	urges, err := s.urges.ListForUser(r.Context(), UserID(r.Context()), start, end)
	if err != nil {
		writeServiceError(w, r, err, "Urge not found")
		return
	}
	writeJSON(w, http.StatusOK, urges)
}

// parseUrgeWindow reads the mandatory start/end query bounds. On a bad
// request it writes the error itself and returns ok=false.
func parseUrgeWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, http.StatusBadRequest, "Start and end dates are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
