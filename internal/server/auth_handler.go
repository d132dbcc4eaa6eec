package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mgarcia/jobboard/internal/server/middleware"
	"github.com/mgarcia/jobboard/internal/types"
)

// handleRegister handles user registration.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.validator.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := s.userService.Register(r.Context(), &req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.respond(w, http.StatusCreated, types.LoginResponse{User: user, Token: token})
}

// handleLogin handles user login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.validator.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := s.userService.Login(r.Context(), &req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.respond(w, http.StatusOK, types.LoginResponse{User: user, Token: token})
}

// handleGetMe returns the authenticated user's profile.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.userService.GetProfile(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respond(w, http.StatusOK, user)
}

// handleUpdateMe updates the authenticated user's profile, or their password
// when the payload carries password fields.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var raw struct {
		types.UpdateProfileRequest
		types.UpdatePasswordRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if raw.CurrentPassword != "" || raw.NewPassword != "" {
		req := raw.UpdatePasswordRequest
		if err := s.validator.Struct(req); err != nil {
			s.respondError(w, http.StatusBadRequest, extractValidationErrors(err))
			return
		}
		if err := s.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			s.respondServiceError(w, err)
			return
		}
		s.respondMessage(w, http.StatusOK, "Password updated successfully")
		return
	}

	req := raw.UpdateProfileRequest
	if err := s.validator.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := s.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respond(w, http.StatusOK, user)
}

// extractValidationErrors renders the first validator error as a message.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
