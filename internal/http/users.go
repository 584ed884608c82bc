package http

import (
	"net/http"
	"strconv"

	"github.com/dibyam12/SMS-backend/internal/crypto"
	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/repository"
)

type studentView struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	RollNo                *string   `json:"roll_no"`
	Gender                *string   `json:"gender,omitempty"`
	DOB                   *timeOnly `json:"dob,omitempty"`
	Address               *string   `json:"address,omitempty"`
	AdmissionDate         *timeOnly `json:"admission_date,omitempty"`
	GuardianContact       *string   `json:"guardian_contact,omitempty"`
	IsScholarship         bool      `json:"is_scholarship"`
	ScholarshipPercentage *float64  `json:"scholarship_percentage,omitempty"`
	BusRouteID            *string   `json:"bus_route_id,omitempty"`
}

type staffView struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	StaffCode     *string   `json:"staff_code"`
	Address       *string   `json:"address,omitempty"`
	Gender        *string   `json:"gender,omitempty"`
	DOB           *timeOnly `json:"dob,omitempty"`
	Qualification *string   `json:"qualification,omitempty"`
	StaffType     string    `json:"staff_type"`
}

type parentView struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Relationship *string `json:"relationship,omitempty"`
}

func toStudentView(student model.Student) studentView {
	return studentView{
		ID:                    student.ID,
		UserID:                student.UserID,
		RollNo:                student.RollNo,
		Gender:                student.Gender,
		DOB:                   newTimeOnly(student.DOB),
		Address:               student.Address,
		AdmissionDate:         newTimeOnly(student.AdmissionDate),
		GuardianContact:       student.GuardianContact,
		IsScholarship:         student.IsScholarship,
		ScholarshipPercentage: student.ScholarshipPercentage,
		BusRouteID:            student.BusRouteID,
	}
}

func toStaffView(staff model.Staff) staffView {
	return staffView{
		ID:            staff.ID,
		UserID:        staff.UserID,
		StaffCode:     staff.StaffCode,
		Address:       staff.Address,
		Gender:        staff.Gender,
		DOB:           newTimeOnly(staff.DOB),
		Qualification: staff.Qualification,
		StaffType:     staff.StaffType.String(),
	}
}

func toParentView(parent model.Parent) parentView {
	return parentView{ID: parent.ID, UserID: parent.UserID, Relationship: parent.Relationship}
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	profile, err := s.store.GetFullProfile(r.Context(), claims.UserID)
	if err != nil {
		s.lookupError(w, "get profile", err)
		return
	}

	response := map[string]interface{}{"user": toUserView(profile.User)}
	if profile.Student != nil {
		response["student"] = toStudentView(*profile.Student)
	}
	if profile.Staff != nil {
		response["staff"] = toStaffView(*profile.Staff)
	}
	if profile.Parent != nil {
		response["parent"] = toParentView(*profile.Parent)
	}
	writeJSON(w, http.StatusOK, response)
}

type updateMeRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	ProfilePic *string `json:"profile_pic"`
	Password   *string `json:"password"`
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req updateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	update := repository.UserUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		ProfilePic: req.ProfilePic,
	}
	if req.Password != nil {
		if *req.Password == "" {
			writeError(w, http.StatusBadRequest, "invalid_fields")
			return
		}
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			s.internalError(w, "hash password", err)
			return
		}
		update.PasswordHash = &hash
	}

	user, err := s.store.UpdateUser(r.Context(), claims.UserID, update)
	if err != nil {
		s.lookupError(w, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (s *Server) handleListUsersByRole(w http.ResponseWriter, r *http.Request) {
	role, ok := model.ParseRole(r.URL.Query().Get("role"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}

	users, err := s.store.ListUsersByRole(r.Context(), role, limit)
	if err != nil {
		s.internalError(w, "list users", err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": views})
}
