package server

import (
	"net/http"

	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/types"
)

func (s *Server) authInvalidBody(w http.ResponseWriter) {
	s.jsonResponse(w, http.StatusBadRequest, newAuthError(CodeInvalidRequest, "Invalid request body."))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.unavailable(w, "authentication")
		return
	}
	var req types.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.authInvalidBody(w)
		return
	}
	resp, err := s.deps.Auth.Register(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.unavailable(w, "authentication")
		return
	}
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.authInvalidBody(w)
		return
	}
	resp, err := s.deps.Auth.Login(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.unavailable(w, "authentication")
		return
	}
	if err := s.deps.Auth.Logout(r.Context(), middleware.GetToken(r)); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.unavailable(w, "authentication")
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.unauthorized(w, r)
		return
	}
	user, err := s.deps.Auth.Me(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

// handleForgotPassword always answers 202 for well-formed requests.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.unavailable(w, "authentication")
		return
	}
	var req types.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.authInvalidBody(w)
		return
	}
	if err := s.deps.Auth.ForgotPassword(r.Context(), req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"message": "If an account exists for that email, a reset link is on its way.",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.unavailable(w, "authentication")
		return
	}
	var req types.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.authInvalidBody(w)
		return
	}
	if err := s.deps.Auth.ResetPassword(r.Context(), req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated."})
}
