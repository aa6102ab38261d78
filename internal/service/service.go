package service

import (
	"context"
	"time"

	"membership-backend/internal/domain"
)

// ApplicationService is the sponsor-approval workflow.
type ApplicationService interface {
	// CreateApplication returns created=false when a pending application for the
	// same applicant and sponsor already exists; that record is returned unchanged.
	CreateApplication(ctx context.Context, input domain.ApplicationInput) (*domain.Application, bool, error)
	GetApplication(ctx context.Context, token string) (*domain.Application, error)
	ApproveApplication(ctx context.Context, token, sponsorMemberID, verificationCode string) (*ApprovalResult, error)
	RejectApplication(ctx context.Context, token, actor string) (*domain.Application, error)
	SweepExpiredApplications(ctx context.Context) (int, error)
	ListAuditLog(ctx context.Context, applicationID string) ([]domain.AuditEntry, error)
}

// ApprovalResult carries the approved application and the materialized member.
// Member is nil when materialization failed after the approval committed.
type ApprovalResult struct {
	Application *domain.Application
	Member      *domain.Member
}

type MemberService interface {
	RegisterMember(ctx context.Context, email, name string) (*domain.Member, error)
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	SetMemberActive(ctx context.Context, id string, active bool) (*domain.Member, error)
}

// Notifier delivers workflow messages out of band.
type Notifier interface {
	// SendApprovalRequest sends the approval link and the verification code to the sponsor.
	SendApprovalRequest(ctx context.Context, app *domain.Application) error
	SendApplicationApproved(ctx context.Context, app *domain.Application, member *domain.Member) error
}

// ApprovalPolicy holds the workflow limits.
type ApprovalPolicy struct {
	LinkTTL             time.Duration
	RateLimitWindow     time.Duration
	RateLimitQuota      int
	MaterializeAttempts int
	SweepBatchSize      int
}

func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		LinkTTL:             7 * 24 * time.Hour,
		RateLimitWindow:     30 * 24 * time.Hour,
		RateLimitQuota:      5,
		MaterializeAttempts: 3,
		SweepBatchSize:      500,
	}
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
