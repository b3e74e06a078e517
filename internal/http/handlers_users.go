package http

import (
	"net/http"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	if err := s.users.ResendVerification(r.Context(), UserID(r.Context())); err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userUpdateRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := s.users.Update(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	n, err := s.users.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": n})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if err := s.users.Verify(r.Context(), token); err != nil {
		writeServiceError(w, r, err, "Token not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, u, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

type resetRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.users.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		writeServiceError(w, r, err, "Token not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
