package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
)

const expiredEventConstraint = "application_audit_log_expired_key"

type auditLogRepository struct {
	q querier
}

func (r *auditLogRepository) Append(ctx context.Context, e *domain.AuditEntry) error {
	var metadata any
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		metadata = string(raw)
	}

	query := `INSERT INTO application_audit_log (application_id, event, performed_by, at, metadata)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	logger.DatabaseCall("INSERT", "application_audit_log", "applicationID", e.ApplicationID, "event", e.Event)
	err := r.q.QueryRowContext(ctx, query, e.ApplicationID, e.Event, e.PerformedBy, e.At, metadata).Scan(&e.ID)
	if isUniqueViolation(err, expiredEventConstraint) {
		return domain.ErrConflict
	}
	logger.DatabaseResult("INSERT", 1, err, "applicationID", e.ApplicationID, "event", e.Event)
	return err
}

func (r *auditLogRepository) ListFor(ctx context.Context, applicationID string) ([]domain.AuditEntry, error) {
	query := `SELECT id, application_id, event, performed_by, at, metadata
	          FROM application_audit_log WHERE application_id = $1 ORDER BY at, id`
	rows, err := r.q.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var performedBy sql.NullString
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.Event, &performedBy, &e.At, &metadata); err != nil {
			return nil, err
		}
		if performedBy.Valid {
			actor := performedBy.String
			e.PerformedBy = &actor
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *auditLogRepository) Exists(ctx context.Context, applicationID string, event domain.AuditEvent) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM application_audit_log WHERE application_id = $1 AND event = $2)`
	var exists bool
	err := r.q.QueryRowContext(ctx, query, applicationID, event).Scan(&exists)
	return exists, err
}
