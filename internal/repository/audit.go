package repository

import (
	"context"

	"github.com/dibyam12/SMS-backend/internal/model"
)

// AppendAudit writes one append-only audit entry. Failures are the caller's
// to ignore; auditing never blocks the operation it records.
func (s *Store) AppendAudit(ctx context.Context, entry model.AuditEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, target_table, target_id, ip_address, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.ActorUserID, entry.Action, entry.TargetTable, entry.TargetID, entry.IPAddress, entry.Metadata, entry.CreatedAt)
	return err
}
