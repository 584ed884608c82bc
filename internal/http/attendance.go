package http

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/repository"
)

type attendanceView struct {
	ID        string   `json:"id"`
	StudentID string   `json:"student_id"`
	Date      timeOnly `json:"date"`
	Status    string   `json:"status"`
	MarkedBy  *string  `json:"marked_by,omitempty"`
	Note      *string  `json:"note,omitempty"`
}

func toAttendanceView(record model.Attendance) attendanceView {
	return attendanceView{
		ID:        record.ID,
		StudentID: record.StudentID,
		Date:      timeOnly(record.Date),
		Status:    record.Status.String(),
		MarkedBy:  record.MarkedBy,
		Note:      record.Note,
	}
}

type markAttendanceRequest struct {
	StudentID string  `json:"student_id"`
	Date      string  `json:"date"`
	Status    string  `json:"status"`
	Note      *string `json:"note"`
}

// handleMarkAttendance upserts the day's record: marking twice replaces the
// first mark instead of erroring.
func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req markAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}
	status, ok := model.ParseAttendanceStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	claims := claimsFromContext(r.Context())
	record, err := s.store.MarkAttendance(r.Context(), model.Attendance{
		ID:        uuid.NewString(),
		StudentID: req.StudentID,
		Date:      date,
		Status:    status,
		MarkedBy:  &claims.UserID,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.internalError(w, "mark attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceView(record))
}

type patchAttendanceRequest struct {
	Status *string `json:"status"`
	Note   *string `json:"note"`
}

func (s *Server) handlePatchAttendance(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req patchAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	update := repository.AttendanceUpdate{Note: req.Note}
	if req.Status != nil {
		status, ok := model.ParseAttendanceStatus(*req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		update.Status = &status
	}

	record, err := s.store.UpdateAttendance(r.Context(), chi.URLParam(r, "attendanceId"), update)
	if err != nil {
		s.lookupError(w, "update attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceView(record))
}

// attendanceRange parses the optional from_date/to_date bounds. A missing
// side leaves the range open on that end.
func attendanceRange(query url.Values) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

	if raw := query.Get("from_date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if raw := query.Get("to_date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return from, to, err
		}
		to = parsed
	}
	return from, to, nil
}

func (s *Server) handleGetStudentAttendance(w http.ResponseWriter, r *http.Request) {
	from, to, err := attendanceRange(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	records, err := s.store.ListStudentAttendance(r.Context(), chi.URLParam(r, "studentId"), from, to)
	if err != nil {
		s.internalError(w, "list attendance", err)
		return
	}

	views := make([]attendanceView, 0, len(records))
	for _, record := range records {
		views = append(views, toAttendanceView(record))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attendance": views})
}

type classParams struct {
	gradeID   string
	sectionID string
	batchID   string
	date      time.Time
}

func classParamsFromQuery(r *http.Request) (classParams, bool) {
	query := r.URL.Query()
	params := classParams{
		gradeID:   query.Get("grade_id"),
		sectionID: query.Get("section_id"),
		batchID:   query.Get("batch_id"),
	}
	if params.gradeID == "" || params.sectionID == "" || params.batchID == "" {
		return params, false
	}
	date, err := parseDate(query.Get("date"))
	if err != nil {
		return params, false
	}
	params.date = date
	return params, true
}

type classAttendanceRowView struct {
	StudentID string  `json:"student_id"`
	RollNo    *string `json:"roll_no"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	RecordID  *string `json:"record_id"`
	Status    *string `json:"status"`
	Note      *string `json:"note,omitempty"`
}

func (s *Server) handleGetClassAttendance(w http.ResponseWriter, r *http.Request) {
	params, ok := classParamsFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing_class_params")
		return
	}

	rows, err := s.store.ListClassAttendanceByDate(r.Context(), params.gradeID, params.sectionID, params.batchID, params.date)
	if err != nil {
		s.internalError(w, "class attendance", err)
		return
	}

	views := make([]classAttendanceRowView, 0, len(rows))
	for _, row := range rows {
		view := classAttendanceRowView{
			StudentID: row.StudentID,
			RollNo:    row.RollNo,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			RecordID:  row.RecordID,
			Note:      row.Note,
		}
		if row.Status != nil {
			status := row.Status.String()
			view.Status = &status
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attendance": views})
}

func (s *Server) handleGetClassDailySummary(w http.ResponseWriter, r *http.Request) {
	params, ok := classParamsFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing_class_params")
		return
	}

	buckets, err := s.store.GetClassDailySummary(r.Context(), params.gradeID, params.sectionID, params.batchID, params.date)
	if err != nil {
		s.internalError(w, "class summary", err)
		return
	}

	// Unmarked students come back under the nil-status bucket.
	summary := map[string]int64{"unmarked": 0}
	for _, bucket := range buckets {
		if bucket.Status == nil {
			summary["unmarked"] = bucket.Count
			continue
		}
		summary[bucket.Status.String()] = bucket.Count
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    timeOnly(params.date),
		"summary": summary,
	})
}
