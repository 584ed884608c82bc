package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, phone, profile_pic, role, is_active, is_staff, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.ProfilePic,
		&user.Role,
		&user.IsActive,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM app_users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM app_users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM app_users
		WHERE id = $1
	`, userID)
	return scanUser(row)
}

func (s *Store) EmailExists(ctx context.Context, email string) bool {
	return exists(ctx, s.pool, `SELECT 1 FROM app_users WHERE email = $1`, email)
}

func (s *Store) UsernameExists(ctx context.Context, username string) bool {
	return exists(ctx, s.pool, `SELECT 1 FROM app_users WHERE username = $1`, username)
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_users (id, email, username, password_hash, first_name, last_name, phone, profile_pic, role, is_active, is_staff, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.ProfilePic, user.Role, user.IsActive, user.IsStaff, user.CreatedAt, user.UpdatedAt)
	return err
}

// UserUpdate lists the mutable identity fields. Nil means leave unchanged;
// unknown fields cannot be smuggled in at call sites.
type UserUpdate struct {
	Email        *string
	Username     *string
	FirstName    *string
	LastName     *string
	Phone        *string
	ProfilePic   *string
	PasswordHash *string
	IsActive     *bool
}

func (u UserUpdate) assignments() ([]string, []interface{}) {
	var fields []string
	var values []interface{}
	add := func(column string, value interface{}) {
		values = append(values, value)
		fields = append(fields, column+" = $"+strconv.Itoa(len(values)))
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.Username != nil {
		add("username", *u.Username)
	}
	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		add("last_name", *u.LastName)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}
	if u.ProfilePic != nil {
		add("profile_pic", *u.ProfilePic)
	}
	if u.PasswordHash != nil {
		add("password_hash", *u.PasswordHash)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	return fields, values
}

func (s *Store) UpdateUser(ctx context.Context, userID string, update UserUpdate) (model.User, error) {
	fields, values := update.assignments()
	if len(fields) == 0 {
		return s.GetUserByID(ctx, userID)
	}
	fields = append(fields, "updated_at = now()")
	values = append(values, userID)

	row := s.pool.QueryRow(ctx, `
		UPDATE app_users
		SET `+strings.Join(fields, ", ")+`
		WHERE id = $`+strconv.Itoa(len(values))+`
		RETURNING `+userColumns, values...)
	return scanUser(row)
}

func (s *Store) DeleteUser(ctx context.Context, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM app_users WHERE id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListUsersByRole(ctx context.Context, role model.Role, limit int) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM app_users
		WHERE role = $1 AND is_active = TRUE
		ORDER BY first_name, last_name
		LIMIT $2
	`, role, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ActiveUserIDsByRole feeds notification fan-out.
func (s *Store) ActiveUserIDsByRole(ctx context.Context, role model.Role) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM app_users WHERE role = $1 AND is_active = TRUE
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
