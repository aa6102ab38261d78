package service

import (
	"time"

	"membership-backend/internal/domain"
)

// RateLimiter is a fixed-quota counter per sponsor. The counter resets only
// once a full window has passed since the sponsor's last approval, so it is
// an approximation of a rolling window kept in two fields on the member row.
type RateLimiter struct {
	Window time.Duration
	Quota  int
}

// Admit records one approval by m at now, or returns ErrRateLimitExceeded.
// Callers persist m only when Admit succeeds.
func (l RateLimiter) Admit(m *domain.Member, now time.Time) error {
	if m.LastApprovalAt == nil || m.LastApprovalAt.Before(now.Add(-l.Window)) {
		m.ApprovalsInWindow = 0
	}
	if int(m.ApprovalsInWindow) >= l.Quota {
		return domain.ErrRateLimitExceeded
	}
	m.ApprovalsInWindow++
	at := now
	m.LastApprovalAt = &at
	return nil
}
