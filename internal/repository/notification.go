package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
)

const notificationColumns = `id, title, message, target_user_id, target_role, is_read, created_at`

func scanNotification(row pgx.Row) (model.Notification, error) {
	var notification model.Notification
	err := row.Scan(
		&notification.ID,
		&notification.Title,
		&notification.Message,
		&notification.TargetUserID,
		&notification.TargetRole,
		&notification.IsRead,
		&notification.CreatedAt,
	)
	return notification, err
}

// CreateNotification inserts a notification targeted at either a single
// user or a whole role; exactly one target is set.
func (s *Store) CreateNotification(ctx context.Context, notification model.Notification) (model.Notification, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, title, message, target_user_id, target_role, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING `+notificationColumns, notification.ID, notification.Title, notification.Message, notification.TargetUserID, notification.TargetRole, notification.CreatedAt)
	return scanNotification(row)
}

func (s *Store) ListNotificationsForUser(ctx context.Context, userID string, role model.Role, limit, offset int) ([]model.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE target_user_id = $1 OR target_role = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, userID, role, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, notificationID string, read bool) (model.Notification, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE notifications
		SET is_read = $1
		WHERE id = $2
		RETURNING `+notificationColumns, read, notificationID)
	return scanNotification(row)
}

func (s *Store) GetUnreadCountForUser(ctx context.Context, userID string, role model.Role) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE (target_user_id = $1 OR target_role = $2) AND is_read = FALSE
	`, userID, role).Scan(&count)
	return count, err
}

// Device tokens (mobile push fan-out)

func (s *Store) UpsertDeviceToken(ctx context.Context, token model.DeviceToken) (model.DeviceToken, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO device_tokens (id, user_id, token, platform, last_seen)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, token)
		DO UPDATE SET platform = EXCLUDED.platform, last_seen = now()
		RETURNING id, user_id, token, platform, last_seen
	`, token.ID, token.UserID, token.Token, token.Platform)
	err := row.Scan(&token.ID, &token.UserID, &token.Token, &token.Platform, &token.LastSeen)
	return token, err
}

func (s *Store) DeleteDeviceToken(ctx context.Context, userID, token string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM device_tokens WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListDeviceTokensByUserIDs(ctx context.Context, userIDs []string) ([]model.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, token, platform, last_seen
		FROM device_tokens
		WHERE user_id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.DeviceToken
	for rows.Next() {
		var token model.DeviceToken
		if err := rows.Scan(&token.ID, &token.UserID, &token.Token, &token.Platform, &token.LastSeen); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
