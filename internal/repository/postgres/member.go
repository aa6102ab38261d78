package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
)

const memberColumns = `id, email, name, active, profile, approvals_in_window, last_approval_at, created_at, updated_at`

const memberEmailConstraint = "members_email_key"

type memberRepository struct {
	q querier
}

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	profile, err := json.Marshal(m.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	query := `INSERT INTO members (` + memberColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	logger.DatabaseCall("INSERT", "members", "memberID", m.ID)
	_, err = r.q.ExecContext(ctx, query,
		m.ID, m.Email, m.Name, m.Active, string(profile), m.ApprovalsInWindow, m.LastApprovalAt, m.CreatedAt, m.UpdatedAt,
	)
	if isUniqueViolation(err, memberEmailConstraint) {
		return domain.ErrConflict
	}
	logger.DatabaseResult("INSERT", 1, err, "memberID", m.ID)
	return err
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.q.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`
	return scanMember(r.q.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE LOWER(email) = LOWER($1)`
	return scanMember(r.q.QueryRowContext(ctx, query, email))
}

func (r *memberRepository) Update(ctx context.Context, m *domain.Member) error {
	profile, err := json.Marshal(m.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	query := `UPDATE members SET name = $1, profile = $2, active = $3, updated_at = $4 WHERE id = $5`
	res, err := r.q.ExecContext(ctx, query, m.Name, string(profile), m.Active, m.UpdatedAt, m.ID)
	return requireRow(res, err)
}

func (r *memberRepository) UpdateApprovalWindow(ctx context.Context, m *domain.Member) error {
	query := `UPDATE members SET approvals_in_window = $1, last_approval_at = $2, updated_at = $3 WHERE id = $4`
	logger.DatabaseCall("UPDATE", "members.approval_window", "memberID", m.ID, "approvals", m.ApprovalsInWindow)
	res, err := r.q.ExecContext(ctx, query, m.ApprovalsInWindow, m.LastApprovalAt, m.UpdatedAt, m.ID)
	return requireRow(res, err)
}

func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMember(row rowScanner) (*domain.Member, error) {
	m := &domain.Member{}
	var profile []byte
	var lastApprovalAt sql.NullTime

	err := row.Scan(&m.ID, &m.Email, &m.Name, &m.Active, &profile, &m.ApprovalsInWindow, &lastApprovalAt, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &m.Profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile of member %s: %w", m.ID, err)
		}
	}
	if lastApprovalAt.Valid {
		t := lastApprovalAt.Time
		m.LastApprovalAt = &t
	}
	return m, nil
}
