package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
)

const attendanceColumns = `id, student_id, date, status, marked_by, note, created_at`

func scanAttendance(row pgx.Row) (model.Attendance, error) {
	var record model.Attendance
	err := row.Scan(
		&record.ID,
		&record.StudentID,
		&record.Date,
		&record.Status,
		&record.MarkedBy,
		&record.Note,
		&record.CreatedAt,
	)
	return record, err
}

// MarkAttendance upserts the record for (student, date). Re-marking the same
// day replaces status, marker and note.
func (s *Store) MarkAttendance(ctx context.Context, record model.Attendance) (model.Attendance, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO attendance (id, student_id, date, status, marked_by, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (student_id, date)
		DO UPDATE SET
			status = EXCLUDED.status,
			marked_by = EXCLUDED.marked_by,
			note = EXCLUDED.note
		RETURNING `+attendanceColumns, record.ID, record.StudentID, record.Date, record.Status, record.MarkedBy, record.Note, record.CreatedAt)
	return scanAttendance(row)
}

func (s *Store) GetAttendanceByID(ctx context.Context, recordID string) (model.Attendance, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE id = $1
	`, recordID)
	return scanAttendance(row)
}

// AttendanceUpdate lists the mutable attendance fields.
type AttendanceUpdate struct {
	Status *model.AttendanceStatus
	Note   *string
}

func (s *Store) UpdateAttendance(ctx context.Context, recordID string, update AttendanceUpdate) (model.Attendance, error) {
	var fields []string
	var values []interface{}
	if update.Status != nil {
		values = append(values, *update.Status)
		fields = append(fields, "status = $"+strconv.Itoa(len(values)))
	}
	if update.Note != nil {
		values = append(values, *update.Note)
		fields = append(fields, "note = $"+strconv.Itoa(len(values)))
	}
	if len(fields) == 0 {
		return s.GetAttendanceByID(ctx, recordID)
	}
	values = append(values, recordID)

	row := s.pool.QueryRow(ctx, `
		UPDATE attendance
		SET `+strings.Join(fields, ", ")+`
		WHERE id = $`+strconv.Itoa(len(values))+`
		RETURNING `+attendanceColumns, values...)
	return scanAttendance(row)
}

func (s *Store) ListStudentAttendance(ctx context.Context, studentID string, from, to time.Time) ([]model.Attendance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE student_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`, studentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Attendance
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ClassAttendanceRow is one roster entry with the day's mark left-joined;
// Status is nil for students without a record.
type ClassAttendanceRow struct {
	StudentID string
	RollNo    *string
	FirstName string
	LastName  string
	RecordID  *string
	Status    *model.AttendanceStatus
	Note      *string
}

func (s *Store) ListClassAttendanceByDate(ctx context.Context, gradeID, sectionID, batchID string, date time.Time) ([]ClassAttendanceRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.roll_no, au.first_name, au.last_name,
		       a.id, a.status, a.note
		FROM enrollments e
		JOIN students s ON e.student_id = s.id
		JOIN app_users au ON s.user_id = au.id
		LEFT JOIN attendance a ON a.student_id = s.id AND a.date = $4
		WHERE e.grade_id = $1 AND e.section_id = $2 AND e.batch_id = $3
		ORDER BY s.roll_no
	`, gradeID, sectionID, batchID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ClassAttendanceRow
	for rows.Next() {
		var result ClassAttendanceRow
		if err := rows.Scan(
			&result.StudentID,
			&result.RollNo,
			&result.FirstName,
			&result.LastName,
			&result.RecordID,
			&result.Status,
			&result.Note,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// ClassAttendanceSummary counts roster entries per status for one day.
// The nil-status bucket is students with no record yet.
type ClassAttendanceSummary struct {
	Status *model.AttendanceStatus
	Count  int64
}

func (s *Store) GetClassDailySummary(ctx context.Context, gradeID, sectionID, batchID string, date time.Time) ([]ClassAttendanceSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.status, COUNT(*)
		FROM enrollments e
		JOIN students s ON e.student_id = s.id
		LEFT JOIN attendance a ON a.student_id = s.id AND a.date = $4
		WHERE e.grade_id = $1 AND e.section_id = $2 AND e.batch_id = $3
		GROUP BY a.status
	`, gradeID, sectionID, batchID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ClassAttendanceSummary
	for rows.Next() {
		var result ClassAttendanceSummary
		if err := rows.Scan(&result.Status, &result.Count); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
