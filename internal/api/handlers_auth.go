package api

import (
	"net/http"

	"github.com/invest-tracker/internal/service"
	"github.com/invest-tracker/internal/types"
)

// handleRegister handles POST /api/register - create a new account
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

// handleLogin handles POST /api/login - issue a session token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// handleForgotPassword handles POST /api/forgot-password
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := s.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Recovery email sent",
	})
}

// handleResetPassword handles POST /api/reset-password
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := s.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated",
	})
}

// handleGetProfile handles GET /api/profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := s.authService.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// handleUpdateProfile handles PUT /api/profile
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req service.ProfileInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := s.authService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// handleChangePassword handles PUT /api/profile/change-password
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := s.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated",
	})
}
