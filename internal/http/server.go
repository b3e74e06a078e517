// Package http exposes the REST API.
package http

import (
	"context"
	"net/http"

	"frugal/internal/auth"
	"frugal/internal/metrics"
	"frugal/internal/middleware/ratelimit"
	"frugal/internal/middleware/security"
	"frugal/internal/middleware/trace"
	"frugal/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated user id stored by the auth
// middleware, or "" on unauthenticated requests.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

type Server struct {
	http.Server

	users    *services.UserService
	habits   *services.HabitService
	goals    *services.GoalService
	urges    *services.UrgeService
	expenses *services.ExpenseService

	jwtSecret string
	limiter   *ratelimit.Limiter
}

func NewServer(addr, jwtSecret string,
	users *services.UserService,
	habits *services.HabitService,
	goals *services.GoalService,
	urges *services.UrgeService,
	expenses *services.ExpenseService,
) *Server {
	s := &Server{
		users:     users,
		habits:    habits,
		goals:     goals,
		urges:     urges,
		expenses:  expenses,
		jwtSecret: jwtSecret,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/users", s.handleRegister)
	mux.HandleFunc("POST /api/users/verify/{token}", s.handleVerify)
	mux.HandleFunc("POST /api/users/reset", s.handleRequestReset)
	mux.HandleFunc("POST /api/users/reset/{token}", s.handleResetPassword)
	mux.HandleFunc("POST /api/auth", s.handleLogin)

	mux.HandleFunc("GET /api/users/me", s.auth(s.handleGetMe))
	mux.HandleFunc("POST /api/users/resend/verification", s.auth(s.handleResendVerification))
	mux.HandleFunc("PUT /api/users/{id}", s.auth(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/users/{id}", s.auth(s.handleDeleteUser))

	mux.HandleFunc("GET /api/habits", s.auth(s.handleListHabits))
	mux.HandleFunc("POST /api/habits", s.auth(s.handleCreateHabit))
	mux.HandleFunc("GET /api/habits/{id}", s.auth(s.handleGetHabit))
	mux.HandleFunc("PUT /api/habits/{id}", s.auth(s.handleUpdateHabit))
	mux.HandleFunc("DELETE /api/habits/{id}", s.auth(s.handleDeleteHabit))

	mux.HandleFunc("POST /api/habits/{id}/urge", s.auth(s.handleCreateUrge))
	mux.HandleFunc("GET /api/habits/{id}/urges", s.auth(s.handleListHabitUrges))
	mux.HandleFunc("GET /api/habits/urges/all", s.auth(s.handleListAllUrges))

	mux.HandleFunc("POST /api/habits/{id}/goal", s.auth(s.handleCreateGoal))
	mux.HandleFunc("GET /api/habits/{id}/goals", s.auth(s.handleListHabitGoals))
	mux.HandleFunc("GET /api/habits/goals/all", s.auth(s.handleListAllGoals))
	mux.HandleFunc("GET /api/habits/goal/{id}", s.auth(s.handleGetGoal))
	mux.HandleFunc("PUT /api/habits/goal/{id}", s.auth(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/habits/goal/{id}", s.auth(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/expenses", s.auth(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.auth(s.handleGetExpense))
	mux.HandleFunc("POST /api/expenses", s.auth(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.auth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.auth(s.handleDeleteExpense))

	traced := trace.NewMiddleware(security.ClientIP)
	headers := security.NewHeaders(security.DefaultConfig())

	s.Server = http.Server{
		Addr:    addr,
		Handler: traced.Wrap(headers.Wrap(s.rateLimited(mux))),
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth requires a valid bearer token and stashes the user id in the
// request context.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		userID, err := auth.ParseJWT(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(security.ClientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the listener and the rate limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
