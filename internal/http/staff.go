package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dibyam12/SMS-backend/internal/crypto"
	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/repository"
)

type createStaffRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`

	StaffCode     *string   `json:"staff_code"`
	Address       *string   `json:"address"`
	Gender        *string   `json:"gender"`
	DOB           *timeOnly `json:"dob"`
	Qualification *string   `json:"qualification"`
	StaffType     string    `json:"staff_type"`
}

func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req createStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}
	staffType, ok := model.ParseRole(req.StaffType)
	if !ok || !staffType.IsStaffRole() {
		writeError(w, http.StatusBadRequest, "invalid_staff_type")
		return
	}
	if s.store.EmailExists(r.Context(), req.Email) {
		writeError(w, http.StatusBadRequest, "email_taken")
		return
	}
	if s.store.UsernameExists(r.Context(), req.Username) {
		writeError(w, http.StatusBadRequest, "username_taken")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, "hash password", err)
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     &req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         staffType,
		IsActive:     true,
		IsStaff:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	staff := model.Staff{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		StaffCode:     req.StaffCode,
		Address:       req.Address,
		Gender:        req.Gender,
		DOB:           dateValue(req.DOB),
		Qualification: req.Qualification,
		StaffType:     staffType,
	}

	if err := s.store.CreateStaffWithUser(r.Context(), user, staff); err != nil {
		s.internalError(w, "create staff", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  toUserView(user),
		"staff": toStaffView(staff),
	})
}

type staffWithUserView struct {
	staffView
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Username  *string `json:"username"`
	IsActive  bool    `json:"is_active"`
}

func toStaffWithUserView(row repository.StaffWithUser) staffWithUserView {
	return staffWithUserView{
		staffView: toStaffView(row.Staff),
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Username:  row.Username,
		IsActive:  row.IsActive,
	}
}

func (s *Server) handleGetStaff(w http.ResponseWriter, r *http.Request) {
	row, err := s.store.GetStaffWithUser(r.Context(), chi.URLParam(r, "staffId"))
	if err != nil {
		s.lookupError(w, "get staff", err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffWithUserView(row))
}

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	var staffType *model.Role
	if raw := r.URL.Query().Get("staff_type"); raw != "" {
		parsed, ok := model.ParseRole(raw)
		if !ok || !parsed.IsStaffRole() {
			writeError(w, http.StatusBadRequest, "invalid_staff_type")
			return
		}
		staffType = &parsed
	}

	rows, err := s.store.ListStaff(r.Context(), staffType)
	if err != nil {
		s.internalError(w, "list staff", err)
		return
	}

	views := make([]staffWithUserView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toStaffWithUserView(row))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"staff": views})
}

type patchStaffRequest struct {
	StaffCode     *string   `json:"staff_code"`
	Address       *string   `json:"address"`
	Gender        *string   `json:"gender"`
	DOB           *timeOnly `json:"dob"`
	Qualification *string   `json:"qualification"`
	StaffType     *string   `json:"staff_type"`
}

func (s *Server) handlePatchStaff(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req patchStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	update := repository.StaffUpdate{
		StaffCode:     req.StaffCode,
		Address:       req.Address,
		Gender:        req.Gender,
		DOB:           dateValue(req.DOB),
		Qualification: req.Qualification,
	}
	if req.StaffType != nil {
		staffType, ok := model.ParseRole(*req.StaffType)
		if !ok || !staffType.IsStaffRole() {
			writeError(w, http.StatusBadRequest, "invalid_staff_type")
			return
		}
		update.StaffType = &staffType
	}

	staff, err := s.store.UpdateStaff(r.Context(), chi.URLParam(r, "staffId"), update)
	if err != nil {
		s.lookupError(w, "update staff", err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffView(staff))
}

func (s *Server) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	deleted, err := s.store.DeleteStaff(r.Context(), chi.URLParam(r, "staffId"))
	if err != nil {
		s.internalError(w, "delete staff", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "staff deleted"})
}
