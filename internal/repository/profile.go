package repository

import (
	"context"

	"github.com/dibyam12/SMS-backend/internal/model"
)

// FullProfile is the identity row joined with whichever role-specific
// profile exists for the user.
type FullProfile struct {
	User    model.User
	Staff   *model.Staff
	Student *model.Student
	Parent  *model.Parent
}

func (s *Store) GetFullProfile(ctx context.Context, userID string) (FullProfile, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return FullProfile{}, err
	}

	profile := FullProfile{User: user}
	if staff, err := s.GetStaffByUserID(ctx, userID); err == nil {
		profile.Staff = &staff
	}
	if student, err := s.GetStudentByUserID(ctx, userID); err == nil {
		profile.Student = &student
	}
	if parent, err := s.GetParentByUserID(ctx, userID); err == nil {
		profile.Parent = &parent
	}
	return profile, nil
}
