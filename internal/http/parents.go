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

type parentStudentLinkRequest struct {
	StudentID        string `json:"student_id"`
	IsPrimaryContact bool   `json:"is_primary_contact"`
}

type createParentRequest struct {
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        *string `json:"phone"`
	Relationship *string `json:"relationship"`

	Students []parentStudentLinkRequest `json:"students"`
}

func (s *Server) handleCreateParent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req createParentRequest
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
	for _, link := range req.Students {
		if link.StudentID == "" {
			writeError(w, http.StatusBadRequest, "invalid_fields")
			return
		}
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
		Role:         model.RoleParent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	parent := model.Parent{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Relationship: req.Relationship,
	}
	links := make([]model.ParentStudentLink, 0, len(req.Students))
	for _, link := range req.Students {
		links = append(links, model.ParentStudentLink{
			ParentID:         parent.ID,
			StudentID:        link.StudentID,
			IsPrimaryContact: link.IsPrimaryContact,
		})
	}

	if err := s.store.CreateParentWithUser(r.Context(), user, parent, links); err != nil {
		s.internalError(w, "create parent", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":   toUserView(user),
		"parent": toParentView(parent),
	})
}

func (s *Server) handleGetParent(w http.ResponseWriter, r *http.Request) {
	parent, err := s.store.GetParentByID(r.Context(), chi.URLParam(r, "parentId"))
	if err != nil {
		s.lookupError(w, "get parent", err)
		return
	}
	user, err := s.store.GetUserByID(r.Context(), parent.UserID)
	if err != nil {
		s.lookupError(w, "get parent user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":   toUserView(user),
		"parent": toParentView(parent),
	})
}

type patchParentRequest struct {
	Relationship *string `json:"relationship"`
}

func (s *Server) handlePatchParent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req patchParentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	parent, err := s.store.UpdateParent(r.Context(), chi.URLParam(r, "parentId"), repository.ParentUpdate{
		Relationship: req.Relationship,
	})
	if err != nil {
		s.lookupError(w, "update parent", err)
		return
	}
	writeJSON(w, http.StatusOK, toParentView(parent))
}

func (s *Server) handleDeleteParent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	deleted, err := s.store.DeleteParent(r.Context(), chi.URLParam(r, "parentId"))
	if err != nil {
		s.internalError(w, "delete parent", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "parent deleted"})
}

func (s *Server) handleGetStudentsForParent(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListStudentsForParent(r.Context(), chi.URLParam(r, "parentId"))
	if err != nil {
		s.internalError(w, "list students for parent", err)
		return
	}

	views := make([]studentWithEnrollmentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toStudentWithEnrollmentView(row))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"students": views})
}

type parentWithUserView struct {
	parentView
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone,omitempty"`
	IsPrimaryContact bool    `json:"is_primary_contact"`
}

func (s *Server) handleGetParentsForStudent(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListParentsForStudent(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		s.internalError(w, "list parents for student", err)
		return
	}

	views := make([]parentWithUserView, 0, len(rows))
	for _, row := range rows {
		views = append(views, parentWithUserView{
			parentView:       toParentView(row.Parent),
			FirstName:        row.FirstName,
			LastName:         row.LastName,
			Email:            row.Email,
			Phone:            row.Phone,
			IsPrimaryContact: row.IsPrimaryContact,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"parents": views})
}

func (s *Server) handleLinkParentStudent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req parentStudentLinkRequest
	if err := decodeJSON(r, &req); err != nil || req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	link := model.ParentStudentLink{
		ParentID:         chi.URLParam(r, "parentId"),
		StudentID:        req.StudentID,
		IsPrimaryContact: req.IsPrimaryContact,
	}
	if err := s.store.LinkParentStudent(r.Context(), link); err != nil {
		s.internalError(w, "link parent student", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "linked"})
}

func (s *Server) handleUnlinkParentStudent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	err := s.store.UnlinkParentStudent(r.Context(), chi.URLParam(r, "parentId"), chi.URLParam(r, "studentId"))
	if err != nil {
		s.internalError(w, "unlink parent student", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "unlinked"})
}
