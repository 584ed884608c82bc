package http

import (
	"errors"
	"net/http"

	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/service"
)

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsStaff   bool   `json:"is_staff"`
}

type userView struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Username   *string `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Phone      *string `json:"phone,omitempty"`
	ProfilePic *string `json:"profile_pic,omitempty"`
	Role       string  `json:"role"`
	IsActive   bool    `json:"is_active"`
	IsStaff    bool    `json:"is_staff"`
}

func toUserView(user model.User) userView {
	return userView{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      user.Phone,
		ProfilePic: user.ProfilePic,
		Role:       user.Role.String(),
		IsActive:   user.IsActive,
		IsStaff:    user.IsStaff,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	user, err := s.authSvc.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsStaff:   req.IsStaff,
	}, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "invalid_fields")
		case errors.Is(err, service.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "email_taken")
		case errors.Is(err, service.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "username_taken")
		default:
			s.internalError(w, "register", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserView(user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	pair, err := s.authSvc.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			loginsTotal.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusBadRequest, "invalid_credentials")
			return
		}
		loginsTotal.WithLabelValues("error").Inc()
		s.internalError(w, "login", err)
		return
	}

	loginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleLogout always answers 200: revoking an already dead session is not an
// error the caller can act on.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	s.authSvc.Logout(r.Context(), req.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "missing_refresh_token")
		return
	}

	pair, err := s.authSvc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshDisabled):
			refreshesTotal.WithLabelValues("disabled").Inc()
			writeError(w, http.StatusServiceUnavailable, "refresh_disabled")
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrSessionRevoked),
			errors.Is(err, service.ErrTokenMismatch):
			refreshesTotal.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusForbidden, "invalid_refresh_token")
		default:
			refreshesTotal.WithLabelValues("error").Inc()
			s.internalError(w, "refresh", err)
		}
		return
	}

	refreshesTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
