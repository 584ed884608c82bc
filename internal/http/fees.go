package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/repository"
)

type feeHeadView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func toFeeHeadView(head model.FeeHead) feeHeadView {
	return feeHeadView{ID: head.ID, Name: head.Name, Description: head.Description}
}

type createFeeHeadRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleCreateFeeHead(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req createFeeHeadRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	head, err := s.store.CreateFeeHead(r.Context(), model.FeeHead{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.internalError(w, "create fee head", err)
		return
	}
	writeJSON(w, http.StatusCreated, toFeeHeadView(head))
}

func (s *Server) handlePatchFeeHead(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	head, err := s.store.UpdateFeeHead(r.Context(), chi.URLParam(r, "headId"), repository.FeeHeadUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.lookupError(w, "update fee head", err)
		return
	}
	writeJSON(w, http.StatusOK, toFeeHeadView(head))
}

func (s *Server) handleListFeeHeads(w http.ResponseWriter, r *http.Request) {
	heads, err := s.store.ListFeeHeads(r.Context())
	if err != nil {
		s.internalError(w, "list fee heads", err)
		return
	}

	views := make([]feeHeadView, 0, len(heads))
	for _, head := range heads {
		views = append(views, toFeeHeadView(head))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"fee_heads": views})
}

type studentFeeView struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	FeeHeadID   string    `json:"fee_head_id"`
	FeeHeadName string    `json:"fee_head_name,omitempty"`
	Amount      float64   `json:"amount"`
	DueDate     *timeOnly `json:"due_date,omitempty"`
	IsPaid      bool      `json:"is_paid"`
}

func toStudentFeeView(fee model.StudentFee) studentFeeView {
	return studentFeeView{
		ID:          fee.ID,
		StudentID:   fee.StudentID,
		FeeHeadID:   fee.FeeHeadID,
		FeeHeadName: fee.FeeHeadName,
		Amount:      fee.Amount,
		DueDate:     newTimeOnly(fee.DueDate),
		IsPaid:      fee.IsPaid,
	}
}

type assignStudentFeeRequest struct {
	StudentID string    `json:"student_id"`
	FeeHeadID string    `json:"fee_head_id"`
	Amount    float64   `json:"amount"`
	DueDate   *timeOnly `json:"due_date"`
}

func (s *Server) handleAssignStudentFee(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req assignStudentFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.StudentID == "" || req.FeeHeadID == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}

	fee, err := s.store.AssignStudentFee(r.Context(), model.StudentFee{
		ID:        uuid.NewString(),
		StudentID: req.StudentID,
		FeeHeadID: req.FeeHeadID,
		Amount:    req.Amount,
		DueDate:   dateValue(req.DueDate),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.internalError(w, "assign fee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentFeeView(fee))
}

type patchStudentFeeRequest struct {
	Amount  *float64  `json:"amount"`
	DueDate *timeOnly `json:"due_date"`
	IsPaid  *bool     `json:"is_paid"`
}

func (s *Server) handlePatchStudentFee(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req patchStudentFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}

	fee, err := s.store.UpdateStudentFee(r.Context(), chi.URLParam(r, "feeId"), repository.StudentFeeUpdate{
		Amount:  req.Amount,
		DueDate: dateValue(req.DueDate),
		IsPaid:  req.IsPaid,
	})
	if err != nil {
		s.lookupError(w, "update fee", err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentFeeView(fee))
}

func (s *Server) handleListStudentFees(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	fees, err := s.store.ListStudentFees(r.Context(), studentID)
	if err != nil {
		s.internalError(w, "list fees", err)
		return
	}
	paidTotal, err := s.store.GetStudentPaidTotal(r.Context(), studentID, nil)
	if err != nil {
		s.internalError(w, "paid total", err)
		return
	}

	var due float64
	views := make([]studentFeeView, 0, len(fees))
	for _, fee := range fees {
		views = append(views, toStudentFeeView(fee))
		due += fee.Amount
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fees":        views,
		"total_due":   due,
		"total_paid":  paidTotal,
		"outstanding": due - paidTotal,
	})
}

type paymentView struct {
	ID             string   `json:"id"`
	StudentFeeID   *string  `json:"student_fee_id,omitempty"`
	StudentID      string   `json:"student_id"`
	Amount         float64  `json:"amount"`
	Method         string   `json:"method"`
	TransactionRef *string  `json:"transaction_ref,omitempty"`
	FeeHeadName    *string  `json:"fee_head_name,omitempty"`
	PaidOn         timeOnly `json:"paid_on"`
}

func toPaymentView(payment model.Payment) paymentView {
	return paymentView{
		ID:             payment.ID,
		StudentFeeID:   payment.StudentFeeID,
		StudentID:      payment.StudentID,
		Amount:         payment.Amount,
		Method:         payment.Method,
		TransactionRef: payment.TransactionRef,
		FeeHeadName:    payment.FeeHeadName,
		PaidOn:         timeOnly(payment.PaidOn),
	}
}

type createPaymentRequest struct {
	StudentID      string  `json:"student_id"`
	StudentFeeID   *string `json:"student_fee_id"`
	Amount         float64 `json:"amount"`
	Method         string  `json:"method"`
	TransactionRef *string `json:"transaction_ref"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.StudentID == "" || req.Amount <= 0 || strings.TrimSpace(req.Method) == "" {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}

	payment, err := s.store.CreatePayment(r.Context(), model.Payment{
		ID:             uuid.NewString(),
		StudentFeeID:   req.StudentFeeID,
		StudentID:      req.StudentID,
		Amount:         req.Amount,
		Method:         strings.TrimSpace(req.Method),
		TransactionRef: req.TransactionRef,
		PaidOn:         time.Now().UTC(),
	})
	if err != nil {
		s.internalError(w, "create payment", err)
		return
	}

	// A payment against a specific invoice settles it once the head's paid
	// total covers the invoiced amount.
	if req.StudentFeeID != nil {
		s.settleFeeIfCovered(r, *req.StudentFeeID)
	}

	writeJSON(w, http.StatusCreated, toPaymentView(payment))
}

func (s *Server) settleFeeIfCovered(r *http.Request, feeID string) {
	fee, err := s.store.GetStudentFeeByID(r.Context(), feeID)
	if err != nil || fee.IsPaid {
		return
	}
	paid, err := s.store.GetStudentPaidTotal(r.Context(), fee.StudentID, &fee.FeeHeadID)
	if err != nil || paid < fee.Amount {
		return
	}
	isPaid := true
	if _, err := s.store.UpdateStudentFee(r.Context(), feeID, repository.StudentFeeUpdate{IsPaid: &isPaid}); err != nil {
		s.logger.Warn("fee settle failed", zap.Error(err))
	}
}

func (s *Server) handleListPaymentsByStudent(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.ListPaymentsByStudent(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		s.internalError(w, "list payments", err)
		return
	}

	views := make([]paymentView, 0, len(payments))
	for _, payment := range payments {
		views = append(views, toPaymentView(payment))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": views})
}
