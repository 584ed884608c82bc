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

type createStudentRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`

	RollNo                *string   `json:"roll_no"`
	Gender                *string   `json:"gender"`
	DOB                   *timeOnly `json:"dob"`
	Address               *string   `json:"address"`
	AdmissionDate         *timeOnly `json:"admission_date"`
	GuardianContact       *string   `json:"guardian_contact"`
	IsScholarship         bool      `json:"is_scholarship"`
	ScholarshipPercentage *float64  `json:"scholarship_percentage"`
	BusRouteID            *string   `json:"bus_route_id"`
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req createStudentRequest
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
		Role:         model.RoleStudent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	student := model.Student{
		ID:                    uuid.NewString(),
		UserID:                user.ID,
		RollNo:                req.RollNo,
		Gender:                req.Gender,
		DOB:                   dateValue(req.DOB),
		Address:               req.Address,
		AdmissionDate:         dateValue(req.AdmissionDate),
		GuardianContact:       req.GuardianContact,
		IsScholarship:         req.IsScholarship,
		ScholarshipPercentage: req.ScholarshipPercentage,
		BusRouteID:            req.BusRouteID,
	}

	if err := s.store.CreateStudentWithUser(r.Context(), user, student); err != nil {
		s.internalError(w, "create student", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    toUserView(user),
		"student": toStudentView(student),
	})
}

func dateValue(t *timeOnly) *time.Time {
	if t == nil {
		return nil
	}
	converted := time.Time(*t)
	return &converted
}

type studentWithEnrollmentView struct {
	studentView
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	GradeID   *string `json:"grade_id"`
	SectionID *string `json:"section_id"`
	BatchID   *string `json:"batch_id"`
}

func toStudentWithEnrollmentView(row repository.StudentWithEnrollment) studentWithEnrollmentView {
	return studentWithEnrollmentView{
		studentView: toStudentView(row.Student),
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Email:       row.Email,
		GradeID:     row.GradeID,
		SectionID:   row.SectionID,
		BatchID:     row.BatchID,
	}
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	row, err := s.store.GetStudentWithEnrollment(r.Context(), studentID)
	if err != nil {
		s.lookupError(w, "get student", err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentWithEnrollmentView(row))
}

func (s *Server) handleListStudentsByClass(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	gradeID := query.Get("grade_id")
	sectionID := query.Get("section_id")
	batchID := query.Get("batch_id")
	if gradeID == "" || sectionID == "" || batchID == "" {
		writeError(w, http.StatusBadRequest, "missing_class_params")
		return
	}

	rows, err := s.store.ListStudentsByClass(r.Context(), gradeID, sectionID, batchID)
	if err != nil {
		s.internalError(w, "list students", err)
		return
	}

	views := make([]studentWithEnrollmentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toStudentWithEnrollmentView(row))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"students": views})
}

type patchStudentRequest struct {
	RollNo                *string   `json:"roll_no"`
	Gender                *string   `json:"gender"`
	DOB                   *timeOnly `json:"dob"`
	Address               *string   `json:"address"`
	AdmissionDate         *timeOnly `json:"admission_date"`
	GuardianContact       *string   `json:"guardian_contact"`
	IsScholarship         *bool     `json:"is_scholarship"`
	ScholarshipPercentage *float64  `json:"scholarship_percentage"`
	BusRouteID            *string   `json:"bus_route_id"`
}

func (s *Server) handlePatchStudent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req patchStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	student, err := s.store.UpdateStudent(r.Context(), chi.URLParam(r, "studentId"), repository.StudentUpdate{
		RollNo:                req.RollNo,
		Gender:                req.Gender,
		DOB:                   dateValue(req.DOB),
		Address:               req.Address,
		AdmissionDate:         dateValue(req.AdmissionDate),
		GuardianContact:       req.GuardianContact,
		IsScholarship:         req.IsScholarship,
		ScholarshipPercentage: req.ScholarshipPercentage,
		BusRouteID:            req.BusRouteID,
	})
	if err != nil {
		s.lookupError(w, "update student", err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentView(student))
}

type enrollStudentRequest struct {
	GradeID   string `json:"grade_id"`
	SectionID string `json:"section_id"`
	BatchID   string `json:"batch_id"`
}

func (s *Server) handleEnrollStudent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req enrollStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.GradeID == "" || req.SectionID == "" || req.BatchID == "" {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}

	enrollment := model.Enrollment{
		ID:        uuid.NewString(),
		StudentID: chi.URLParam(r, "studentId"),
		GradeID:   req.GradeID,
		SectionID: req.SectionID,
		BatchID:   req.BatchID,
	}
	if err := s.store.UpsertEnrollment(r.Context(), enrollment); err != nil {
		s.internalError(w, "enroll student", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":         enrollment.ID,
		"student_id": enrollment.StudentID,
		"grade_id":   enrollment.GradeID,
		"section_id": enrollment.SectionID,
		"batch_id":   enrollment.BatchID,
	})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	deleted, err := s.store.DeleteStudent(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		s.internalError(w, "delete student", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "student deleted"})
}
