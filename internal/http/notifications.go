package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dibyam12/SMS-backend/internal/model"
)

type notificationView struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Message      string  `json:"message"`
	TargetUserID *string `json:"target_user_id,omitempty"`
	TargetRole   *string `json:"target_role,omitempty"`
	IsRead       bool    `json:"is_read"`
	CreatedAt    string  `json:"created_at"`
}

func toNotificationView(notification model.Notification) notificationView {
	view := notificationView{
		ID:           notification.ID,
		Title:        notification.Title,
		Message:      notification.Message,
		TargetUserID: notification.TargetUserID,
		IsRead:       notification.IsRead,
		CreatedAt:    notification.CreatedAt.Format(time.RFC3339),
	}
	if notification.TargetRole != nil {
		role := notification.TargetRole.String()
		view.TargetRole = &role
	}
	return view
}

type createUserNotificationRequest struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	TargetUserID string `json:"target_user_id"`
}

func (s *Server) handleCreateUserNotification(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req createUserNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" || req.TargetUserID == "" {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}

	notification, err := s.store.CreateNotification(r.Context(), model.Notification{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Message:      req.Message,
		TargetUserID: &req.TargetUserID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.internalError(w, "create notification", err)
		return
	}

	s.dispatchPush(r, notification, []string{req.TargetUserID})
	writeJSON(w, http.StatusCreated, toNotificationView(notification))
}

type createRoleNotificationRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	TargetRole string `json:"target_role"`
}

func (s *Server) handleCreateRoleNotification(w http.ResponseWriter, r *http.Request) {
	if !s.requireStaff(w, r) {
		return
	}

	var req createRoleNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "invalid_fields")
		return
	}
	role, ok := model.ParseRole(req.TargetRole)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	notification, err := s.store.CreateNotification(r.Context(), model.Notification{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Message:    req.Message,
		TargetRole: &role,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.internalError(w, "create notification", err)
		return
	}

	recipients, err := s.store.ActiveUserIDsByRole(r.Context(), role)
	if err != nil {
		s.logger.Warn("role fan-out lookup failed", zap.Error(err))
	}
	s.dispatchPush(r, notification, recipients)
	writeJSON(w, http.StatusCreated, toNotificationView(notification))
}

// dispatchPush resolves device tokens for the recipients. Delivery to the
// push gateway happens out of process; this records the fan-out size.
func (s *Server) dispatchPush(r *http.Request, notification model.Notification, userIDs []string) {
	tokens, err := s.store.ListDeviceTokensByUserIDs(r.Context(), userIDs)
	if err != nil {
		s.logger.Warn("device token lookup failed", zap.Error(err))
		return
	}
	s.logger.Debug("notification fan-out",
		zap.String("notification_id", notification.ID),
		zap.Int("recipients", len(userIDs)),
		zap.Int("devices", len(tokens)),
	)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	limit, offset := 50, 0
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_offset")
			return
		}
		offset = parsed
	}

	notifications, err := s.store.ListNotificationsForUser(r.Context(), claims.UserID, role, limit, offset)
	if err != nil {
		s.internalError(w, "list notifications", err)
		return
	}

	views := make([]notificationView, 0, len(notifications))
	for _, notification := range notifications {
		views = append(views, toNotificationView(notification))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": views})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	count, err := s.store.GetUnreadCountForUser(r.Context(), claims.UserID, role)
	if err != nil {
		s.internalError(w, "unread count", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notification, err := s.store.MarkNotificationRead(r.Context(), chi.URLParam(r, "notificationId"), true)
	if err != nil {
		s.lookupError(w, "mark notification read", err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationView(notification))
}

type deviceTokenRequest struct {
	Token    string  `json:"token"`
	Platform *string `json:"platform"`
}

func (s *Server) handleUpsertDeviceToken(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req deviceTokenRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	token, err := s.store.UpsertDeviceToken(r.Context(), model.DeviceToken{
		ID:       uuid.NewString(),
		UserID:   claims.UserID,
		Token:    req.Token,
		Platform: req.Platform,
	})
	if err != nil {
		s.internalError(w, "register device token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       token.ID,
		"token":    token.Token,
		"platform": token.Platform,
	})
}

func (s *Server) handleDeleteDeviceToken(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req deviceTokenRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	deleted, err := s.store.DeleteDeviceToken(r.Context(), claims.UserID, req.Token)
	if err != nil {
		s.internalError(w, "delete device token", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "device token removed"})
}
