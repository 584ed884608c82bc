package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
)

const staffColumns = `id, user_id, staff_code, address, gender, dob, qualification, staff_type`

func scanStaff(row pgx.Row) (model.Staff, error) {
	var staff model.Staff
	err := row.Scan(
		&staff.ID,
		&staff.UserID,
		&staff.StaffCode,
		&staff.Address,
		&staff.Gender,
		&staff.DOB,
		&staff.Qualification,
		&staff.StaffType,
	)
	return staff, err
}

func (s *Store) GetStaffByID(ctx context.Context, staffID string) (model.Staff, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE id = $1
	`, staffID)
	return scanStaff(row)
}

func (s *Store) GetStaffByUserID(ctx context.Context, userID string) (model.Staff, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE user_id = $1
	`, userID)
	return scanStaff(row)
}

// CreateStaffWithUser inserts the identity row and the staff profile in one
// transaction.
func (s *Store) CreateStaffWithUser(ctx context.Context, user model.User, staff model.Staff) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO app_users (id, email, username, password_hash, first_name, last_name, phone, profile_pic, role, is_active, is_staff, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.ProfilePic, user.Role, user.IsActive, user.IsStaff, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO staff (id, user_id, staff_code, address, gender, dob, qualification, staff_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, staff.ID, staff.UserID, staff.StaffCode, staff.Address, staff.Gender, staff.DOB, staff.Qualification, staff.StaffType)
		return err
	})
}

// StaffWithUser is a staff profile joined with its identity row.
type StaffWithUser struct {
	Staff     model.Staff
	FirstName string
	LastName  string
	Email     string
	Username  *string
	IsActive  bool
}

func scanStaffWithUser(row pgx.Row) (StaffWithUser, error) {
	var result StaffWithUser
	err := row.Scan(
		&result.Staff.ID,
		&result.Staff.UserID,
		&result.Staff.StaffCode,
		&result.Staff.Address,
		&result.Staff.Gender,
		&result.Staff.DOB,
		&result.Staff.Qualification,
		&result.Staff.StaffType,
		&result.FirstName,
		&result.LastName,
		&result.Email,
		&result.Username,
		&result.IsActive,
	)
	return result, err
}

const staffJoinedColumns = `s.id, s.user_id, s.staff_code, s.address, s.gender, s.dob, s.qualification, s.staff_type,
		       au.first_name, au.last_name, au.email, au.username, au.is_active`

func (s *Store) GetStaffWithUser(ctx context.Context, staffID string) (StaffWithUser, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+staffJoinedColumns+`
		FROM staff s
		JOIN app_users au ON s.user_id = au.id
		WHERE s.id = $1
	`, staffID)
	return scanStaffWithUser(row)
}

func (s *Store) ListStaff(ctx context.Context, staffType *model.Role) ([]StaffWithUser, error) {
	query := `
		SELECT ` + staffJoinedColumns + `
		FROM staff s
		JOIN app_users au ON s.user_id = au.id`
	var args []interface{}
	if staffType != nil {
		query += ` WHERE s.staff_type = $1`
		args = append(args, *staffType)
	}
	query += ` ORDER BY au.first_name, au.last_name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StaffWithUser
	for rows.Next() {
		result, err := scanStaffWithUser(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// StaffUpdate lists the mutable staff-profile fields.
type StaffUpdate struct {
	StaffCode     *string
	Address       *string
	Gender        *string
	DOB           *time.Time
	Qualification *string
	StaffType     *model.Role
}

func (u StaffUpdate) assignments() ([]string, []interface{}) {
	var fields []string
	var values []interface{}
	add := func(column string, value interface{}) {
		values = append(values, value)
		fields = append(fields, column+" = $"+strconv.Itoa(len(values)))
	}
	if u.StaffCode != nil {
		add("staff_code", *u.StaffCode)
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.Gender != nil {
		add("gender", *u.Gender)
	}
	if u.DOB != nil {
		add("dob", *u.DOB)
	}
	if u.Qualification != nil {
		add("qualification", *u.Qualification)
	}
	if u.StaffType != nil {
		add("staff_type", *u.StaffType)
	}
	return fields, values
}

func (s *Store) UpdateStaff(ctx context.Context, staffID string, update StaffUpdate) (model.Staff, error) {
	fields, values := update.assignments()
	if len(fields) == 0 {
		return s.GetStaffByID(ctx, staffID)
	}
	values = append(values, staffID)

	row := s.pool.QueryRow(ctx, `
		UPDATE staff
		SET `+strings.Join(fields, ", ")+`
		WHERE id = $`+strconv.Itoa(len(values))+`
		RETURNING `+staffColumns, values...)
	return scanStaff(row)
}

func (s *Store) DeleteStaff(ctx context.Context, staffID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1`, staffID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
