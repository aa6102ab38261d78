package domain

import "time"

type AuditEvent string

const (
	AuditEventCreated  AuditEvent = "created"
	AuditEventApproved AuditEvent = "approved"
	AuditEventRejected AuditEvent = "rejected"
	AuditEventExpired  AuditEvent = "expired"
)

// AuditEntry is one append-only lifecycle record of an Application.
type AuditEntry struct {
	ID            int64             `json:"id"`
	ApplicationID string            `json:"application_id"`
	Event         AuditEvent        `json:"event"`
	PerformedBy   *string           `json:"performed_by,omitempty"`
	At            time.Time         `json:"at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
