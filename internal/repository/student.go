package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
)

const studentColumns = `id, user_id, roll_no, gender, dob, address, admission_date, guardian_contact, is_scholarship, scholarship_percentage, bus_route_id`

func scanStudent(row pgx.Row) (model.Student, error) {
	var student model.Student
	err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.RollNo,
		&student.Gender,
		&student.DOB,
		&student.Address,
		&student.AdmissionDate,
		&student.GuardianContact,
		&student.IsScholarship,
		&student.ScholarshipPercentage,
		&student.BusRouteID,
	)
	return student, err
}

func (s *Store) GetStudentByID(ctx context.Context, studentID string) (model.Student, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1
	`, studentID)
	return scanStudent(row)
}

func (s *Store) GetStudentByUserID(ctx context.Context, userID string) (model.Student, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE user_id = $1
	`, userID)
	return scanStudent(row)
}

// CreateStudentWithUser inserts the identity row and the student profile in
// one transaction so a crash cannot leave a student without an account.
func (s *Store) CreateStudentWithUser(ctx context.Context, user model.User, student model.Student) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO app_users (id, email, username, password_hash, first_name, last_name, phone, profile_pic, role, is_active, is_staff, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.ProfilePic, user.Role, user.IsActive, user.IsStaff, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO students (id, user_id, roll_no, gender, dob, address, admission_date, guardian_contact, is_scholarship, scholarship_percentage, bus_route_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, student.ID, student.UserID, student.RollNo, student.Gender, student.DOB, student.Address, student.AdmissionDate, student.GuardianContact, student.IsScholarship, student.ScholarshipPercentage, student.BusRouteID)
		return err
	})
}

// StudentUpdate lists the mutable student-profile fields.
type StudentUpdate struct {
	RollNo                *string
	Gender                *string
	DOB                   *time.Time
	Address               *string
	AdmissionDate         *time.Time
	GuardianContact       *string
	IsScholarship         *bool
	ScholarshipPercentage *float64
	BusRouteID            *string
}

func (u StudentUpdate) assignments() ([]string, []interface{}) {
	var fields []string
	var values []interface{}
	add := func(column string, value interface{}) {
		values = append(values, value)
		fields = append(fields, column+" = $"+strconv.Itoa(len(values)))
	}
	if u.RollNo != nil {
		add("roll_no", *u.RollNo)
	}
	if u.Gender != nil {
		add("gender", *u.Gender)
	}
	if u.DOB != nil {
		add("dob", *u.DOB)
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.AdmissionDate != nil {
		add("admission_date", *u.AdmissionDate)
	}
	if u.GuardianContact != nil {
		add("guardian_contact", *u.GuardianContact)
	}
	if u.IsScholarship != nil {
		add("is_scholarship", *u.IsScholarship)
	}
	if u.ScholarshipPercentage != nil {
		add("scholarship_percentage", *u.ScholarshipPercentage)
	}
	if u.BusRouteID != nil {
		add("bus_route_id", *u.BusRouteID)
	}
	return fields, values
}

func (s *Store) UpdateStudent(ctx context.Context, studentID string, update StudentUpdate) (model.Student, error) {
	fields, values := update.assignments()
	if len(fields) == 0 {
		return s.GetStudentByID(ctx, studentID)
	}
	values = append(values, studentID)

	row := s.pool.QueryRow(ctx, `
		UPDATE students
		SET `+strings.Join(fields, ", ")+`
		WHERE id = $`+strconv.Itoa(len(values))+`
		RETURNING `+studentColumns, values...)
	return scanStudent(row)
}

func (s *Store) DeleteStudent(ctx context.Context, studentID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, studentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpsertEnrollment places a student in a class; re-enrolling within the same
// batch moves them to the new grade/section.
func (s *Store) UpsertEnrollment(ctx context.Context, enrollment model.Enrollment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO enrollments (id, student_id, grade_id, section_id, batch_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, batch_id)
		DO UPDATE SET grade_id = EXCLUDED.grade_id, section_id = EXCLUDED.section_id
	`, enrollment.ID, enrollment.StudentID, enrollment.GradeID, enrollment.SectionID, enrollment.BatchID)
	return err
}

// StudentWithEnrollment joins the identity, profile and enrollment rows for
// class listings.
type StudentWithEnrollment struct {
	Student   model.Student
	FirstName string
	LastName  string
	Email     string
	GradeID   *string
	SectionID *string
	BatchID   *string
}

func (s *Store) GetStudentWithEnrollment(ctx context.Context, studentID string) (StudentWithEnrollment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.roll_no, s.gender, s.dob, s.address, s.admission_date, s.guardian_contact, s.is_scholarship, s.scholarship_percentage, s.bus_route_id,
		       au.first_name, au.last_name, au.email,
		       e.grade_id, e.section_id, e.batch_id
		FROM students s
		JOIN app_users au ON s.user_id = au.id
		LEFT JOIN enrollments e ON e.student_id = s.id
		WHERE s.id = $1
	`, studentID)

	var result StudentWithEnrollment
	err := row.Scan(
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
	)
	return result, err
}

func (s *Store) ListStudentsByClass(ctx context.Context, gradeID, sectionID, batchID string) ([]StudentWithEnrollment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.user_id, s.roll_no, s.gender, s.dob, s.address, s.admission_date, s.guardian_contact, s.is_scholarship, s.scholarship_percentage, s.bus_route_id,
		       au.first_name, au.last_name, au.email,
		       e.grade_id, e.section_id, e.batch_id
		FROM enrollments e
		JOIN students s ON e.student_id = s.id
		JOIN app_users au ON s.user_id = au.id
		WHERE e.grade_id = $1 AND e.section_id = $2 AND e.batch_id = $3
		ORDER BY s.roll_no
	`, gradeID, sectionID, batchID)
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
