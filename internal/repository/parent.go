package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
)

func (s *Store) GetParentByID(ctx context.Context, parentID string) (model.Parent, error) {
	var parent model.Parent
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, relationship
		FROM parents
		WHERE id = $1
	`, parentID)
	err := row.Scan(&parent.ID, &parent.UserID, &parent.Relationship)
	return parent, err
}

func (s *Store) GetParentByUserID(ctx context.Context, userID string) (model.Parent, error) {
	var parent model.Parent
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, relationship
		FROM parents
		WHERE user_id = $1
	`, userID)
	err := row.Scan(&parent.ID, &parent.UserID, &parent.Relationship)
	return parent, err
}

// CreateParentWithUser inserts identity, parent profile and student links in
// one transaction.
func (s *Store) CreateParentWithUser(ctx context.Context, user model.User, parent model.Parent, links []model.ParentStudentLink) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO app_users (id, email, username, password_hash, first_name, last_name, phone, profile_pic, role, is_active, is_staff, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.ProfilePic, user.Role, user.IsActive, user.IsStaff, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO parents (id, user_id, relationship)
			VALUES ($1, $2, $3)
		`, parent.ID, parent.UserID, parent.Relationship)
		if err != nil {
			return err
		}
		for _, link := range links {
			_, err = tx.Exec(ctx, `
				INSERT INTO parent_students (parent_id, student_id, is_primary_contact)
				VALUES ($1, $2, $3)
				ON CONFLICT (parent_id, student_id) DO UPDATE SET is_primary_contact = EXCLUDED.is_primary_contact
			`, link.ParentID, link.StudentID, link.IsPrimaryContact)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ParentUpdate lists the mutable parent-profile fields.
type ParentUpdate struct {
	Relationship *string
}

func (s *Store) UpdateParent(ctx context.Context, parentID string, update ParentUpdate) (model.Parent, error) {
	if update.Relationship == nil {
		return s.GetParentByID(ctx, parentID)
	}
	var parent model.Parent
	row := s.pool.QueryRow(ctx, `
		UPDATE parents
		SET relationship = $1
		WHERE id = $2
		RETURNING id, user_id, relationship
	`, *update.Relationship, parentID)
	err := row.Scan(&parent.ID, &parent.UserID, &parent.Relationship)
	return parent, err
}

func (s *Store) DeleteParent(ctx context.Context, parentID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM parents WHERE id = $1`, parentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) LinkParentStudent(ctx context.Context, link model.ParentStudentLink) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO parent_students (parent_id, student_id, is_primary_contact)
		VALUES ($1, $2, $3)
		ON CONFLICT (parent_id, student_id) DO UPDATE SET is_primary_contact = EXCLUDED.is_primary_contact
	`, link.ParentID, link.StudentID, link.IsPrimaryContact)
	return err
}

func (s *Store) UnlinkParentStudent(ctx context.Context, parentID, studentID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM parent_students WHERE parent_id = $1 AND student_id = $2
	`, parentID, studentID)
	return err
}

func (s *Store) ListStudentsForParent(ctx context.Context, parentID string) ([]StudentWithEnrollment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.user_id, s.roll_no, s.gender, s.dob, s.address, s.admission_date, s.guardian_contact, s.is_scholarship, s.scholarship_percentage, s.bus_route_id,
		       au.first_name, au.last_name, au.email,
		       e.grade_id, e.section_id, e.batch_id
		FROM parent_students ps
		JOIN students s ON ps.student_id = s.id
		JOIN app_users au ON s.user_id = au.id
		LEFT JOIN enrollments e ON e.student_id = s.id
		WHERE ps.parent_id = $1
		ORDER BY s.roll_no
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StudentWithEnrollment
	for rows.Next() {
		var result StudentWithEnrollment
		if err := rows.Scan(
			&result.Student.ID,
			&result.Student.UserID,
			&result.Student.RollNo,
			&result.Student.Gender,
			&result.Student.DOB,
			&result.Student.Address,
			&result.Student.AdmissionDate,
			&result.Student.GuardianContact,
			&result.Student.IsScholarship,
			&result.Student.ScholarshipPercentage,
			&result.Student.BusRouteID,
			&result.FirstName,
			&result.LastName,
			&result.Email,
			&result.GradeID,
			&result.SectionID,
			&result.BatchID,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// ParentWithUser is a parent profile joined with its identity row.
type ParentWithUser struct {
	Parent           model.Parent
	FirstName        string
	LastName         string
	Email            string
	Phone            *string
	IsPrimaryContact bool
}

func (s *Store) ListParentsForStudent(ctx context.Context, studentID string) ([]ParentWithUser, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.user_id, p.relationship,
		       au.first_name, au.last_name, au.email, au.phone,
		       ps.is_primary_contact
		FROM parent_students ps
		JOIN parents p ON ps.parent_id = p.id
		JOIN app_users au ON p.user_id = au.id
		WHERE ps.student_id = $1
		ORDER BY ps.is_primary_contact DESC, au.first_name
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ParentWithUser
	for rows.Next() {
		var result ParentWithUser
		if err := rows.Scan(
			&result.Parent.ID,
			&result.Parent.UserID,
			&result.Parent.Relationship,
			&result.FirstName,
			&result.LastName,
			&result.Email,
			&result.Phone,
			&result.IsPrimaryContact,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
