package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
)

// Fee heads

func (s *Store) CreateFeeHead(ctx context.Context, head model.FeeHead) (model.FeeHead, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO fee_heads (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, created_at
	`, head.ID, head.Name, head.Description, head.CreatedAt)
	return scanFeeHead(row)
}

func scanFeeHead(row pgx.Row) (model.FeeHead, error) {
	var head model.FeeHead
	err := row.Scan(&head.ID, &head.Name, &head.Description, &head.CreatedAt)
	return head, err
}

func (s *Store) GetFeeHeadByID(ctx context.Context, headID string) (model.FeeHead, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at FROM fee_heads WHERE id = $1
	`, headID)
	return scanFeeHead(row)
}

// FeeHeadUpdate lists the mutable fee-head fields.
type FeeHeadUpdate struct {
	Name        *string
	Description *string
}

func (s *Store) UpdateFeeHead(ctx context.Context, headID string, update FeeHeadUpdate) (model.FeeHead, error) {
	var fields []string
	var values []interface{}
	if update.Name != nil {
		values = append(values, *update.Name)
		fields = append(fields, "name = $"+strconv.Itoa(len(values)))
	}
	if update.Description != nil {
		values = append(values, *update.Description)
		fields = append(fields, "description = $"+strconv.Itoa(len(values)))
	}
	if len(fields) == 0 {
		return s.GetFeeHeadByID(ctx, headID)
	}
	values = append(values, headID)

	row := s.pool.QueryRow(ctx, `
		UPDATE fee_heads
		SET `+strings.Join(fields, ", ")+`
		WHERE id = $`+strconv.Itoa(len(values))+`
		RETURNING id, name, description, created_at`, values...)
	return scanFeeHead(row)
}

func (s *Store) ListFeeHeads(ctx context.Context) ([]model.FeeHead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, created_at FROM fee_heads ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heads []model.FeeHead
	for rows.Next() {
		head, err := scanFeeHead(rows)
		if err != nil {
			return nil, err
		}
		heads = append(heads, head)
	}
	return heads, rows.Err()
}

// Student fees (invoices)

func (s *Store) AssignStudentFee(ctx context.Context, fee model.StudentFee) (model.StudentFee, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO student_fees (id, student_id, fee_head_id, amount, due_date, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING id, student_id, fee_head_id, amount, due_date, is_paid, created_at
	`, fee.ID, fee.StudentID, fee.FeeHeadID, fee.Amount, fee.DueDate, fee.CreatedAt)
	err := row.Scan(&fee.ID, &fee.StudentID, &fee.FeeHeadID, &fee.Amount, &fee.DueDate, &fee.IsPaid, &fee.CreatedAt)
	return fee, err
}

func (s *Store) GetStudentFeeByID(ctx context.Context, feeID string) (model.StudentFee, error) {
	var fee model.StudentFee
	row := s.pool.QueryRow(ctx, `
		SELECT sf.id, sf.student_id, sf.fee_head_id, fh.name, sf.amount, sf.due_date, sf.is_paid, sf.created_at
		FROM student_fees sf
		JOIN fee_heads fh ON sf.fee_head_id = fh.id
		WHERE sf.id = $1
	`, feeID)
	err := row.Scan(&fee.ID, &fee.StudentID, &fee.FeeHeadID, &fee.FeeHeadName, &fee.Amount, &fee.DueDate, &fee.IsPaid, &fee.CreatedAt)
	return fee, err
}

// StudentFeeUpdate lists the mutable invoice fields.
type StudentFeeUpdate struct {
	Amount  *float64
	DueDate *time.Time
	IsPaid  *bool
}

func (s *Store) UpdateStudentFee(ctx context.Context, feeID string, update StudentFeeUpdate) (model.StudentFee, error) {
	var fields []string
	var values []interface{}
	if update.Amount != nil {
		values = append(values, *update.Amount)
		fields = append(fields, "amount = $"+strconv.Itoa(len(values)))
	}
	if update.DueDate != nil {
		values = append(values, *update.DueDate)
		fields = append(fields, "due_date = $"+strconv.Itoa(len(values)))
	}
	if update.IsPaid != nil {
		values = append(values, *update.IsPaid)
		fields = append(fields, "is_paid = $"+strconv.Itoa(len(values)))
	}
	if len(fields) == 0 {
		return s.GetStudentFeeByID(ctx, feeID)
	}
	values = append(values, feeID)

	_, err := s.pool.Exec(ctx, `
		UPDATE student_fees
		SET `+strings.Join(fields, ", ")+`
		WHERE id = $`+strconv.Itoa(len(values)), values...)
	if err != nil {
		return model.StudentFee{}, err
	}
	return s.GetStudentFeeByID(ctx, feeID)
}

func (s *Store) ListStudentFees(ctx context.Context, studentID string) ([]model.StudentFee, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sf.id, sf.student_id, sf.fee_head_id, fh.name, sf.amount, sf.due_date, sf.is_paid, sf.created_at
		FROM student_fees sf
		JOIN fee_heads fh ON sf.fee_head_id = fh.id
		WHERE sf.student_id = $1
		ORDER BY sf.due_date NULLS LAST, sf.created_at
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []model.StudentFee
	for rows.Next() {
		var fee model.StudentFee
		if err := rows.Scan(&fee.ID, &fee.StudentID, &fee.FeeHeadID, &fee.FeeHeadName, &fee.Amount, &fee.DueDate, &fee.IsPaid, &fee.CreatedAt); err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}
	return fees, rows.Err()
}

// Payments

func (s *Store) CreatePayment(ctx context.Context, payment model.Payment) (model.Payment, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO payments (id, student_fee_id, student_id, amount, method, transaction_ref, paid_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, student_fee_id, student_id, amount, method, transaction_ref, paid_on
	`, payment.ID, payment.StudentFeeID, payment.StudentID, payment.Amount, payment.Method, payment.TransactionRef, payment.PaidOn)
	err := row.Scan(&payment.ID, &payment.StudentFeeID, &payment.StudentID, &payment.Amount, &payment.Method, &payment.TransactionRef, &payment.PaidOn)
	return payment, err
}

func (s *Store) ListPaymentsByStudent(ctx context.Context, studentID string) ([]model.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.student_fee_id, p.student_id, p.amount, p.method, p.transaction_ref, p.paid_on, fh.name
		FROM payments p
		LEFT JOIN student_fees sf ON p.student_fee_id = sf.id
		LEFT JOIN fee_heads fh ON sf.fee_head_id = fh.id
		WHERE p.student_id = $1
		ORDER BY p.paid_on DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var payment model.Payment
		if err := rows.Scan(&payment.ID, &payment.StudentFeeID, &payment.StudentID, &payment.Amount, &payment.Method, &payment.TransactionRef, &payment.PaidOn, &payment.FeeHeadName); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// GetStudentPaidTotal sums a student's payments, optionally scoped to one
// fee head.
func (s *Store) GetStudentPaidTotal(ctx context.Context, studentID string, feeHeadID *string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		LEFT JOIN student_fees sf ON p.student_fee_id = sf.id
		WHERE p.student_id = $1`
	args := []interface{}{studentID}
	if feeHeadID != nil {
		query += ` AND sf.fee_head_id = $2`
		args = append(args, *feeHeadID)
	}

	var total float64
	err := s.pool.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}
