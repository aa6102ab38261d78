package repository

import (
	"context"
	"time"

	"membership-backend/internal/domain"
)

// Lookups return domain.ErrNotFound when no row matches. Writes guarded by an
// expected status return domain.ErrConflict when the row has moved on.

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByToken(ctx context.Context, token string) (*domain.Application, error)
	// GetByTokenForUpdate locks the row until the enclosing transaction ends.
	GetByTokenForUpdate(ctx context.Context, token string) (*domain.Application, error)
	GetPendingByPair(ctx context.Context, applicantEmail, sponsorEmail string) (*domain.Application, error)
	// UpdateStatus persists status, token and approval/rejection fields only if
	// the stored status still equals expected.
	UpdateStatus(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) error
	ListOverduePending(ctx context.Context, now time.Time, limit int) ([]domain.Application, error)
}

type MemberRepository interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	// Update overwrites name, profile and active flag.
	Update(ctx context.Context, m *domain.Member) error
	UpdateApprovalWindow(ctx context.Context, m *domain.Member) error
}

type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListFor(ctx context.Context, applicationID string) ([]domain.AuditEntry, error)
	Exists(ctx context.Context, applicationID string, event domain.AuditEvent) (bool, error)
}

// Store groups the repositories. Repositories obtained from the Store passed to
// a WithinTx callback share that transaction.
type Store interface {
	Applications() ApplicationRepository
	Members() MemberRepository
	AuditLog() AuditLogRepository
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
