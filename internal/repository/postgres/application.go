package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
)

const applicationColumns = `id, token, applicant_name, applicant_email, sponsor_email, sponsor_member_id, profile, status,
	verification_code, created_at, expires_at, approved_at, approved_by_id, rejected_at`

const pendingPairConstraint = "applications_pending_pair_key"

type applicationRepository struct {
	q querier
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	profile, err := json.Marshal(app.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	query := `INSERT INTO applications (` + applicationColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	logger.DatabaseCall("INSERT", "applications", "applicationID", app.ID)
	_, err = r.q.ExecContext(ctx, query,
		app.ID, app.Token, app.ApplicantName, app.ApplicantEmail, app.SponsorEmail, app.SponsorMemberID,
		string(profile), app.Status, app.VerificationCode, app.CreatedAt, app.ExpiresAt,
		app.ApprovedAt, app.ApprovedByID, app.RejectedAt,
	)
	if isUniqueViolation(err, pendingPairConstraint) {
		logger.DatabaseResult("INSERT", 0, nil, "applicationID", app.ID, "duplicate_pending", true)
		return domain.ErrConflict
	}
	logger.DatabaseResult("INSERT", 1, err, "applicationID", app.ID)
	return err
}

func (r *applicationRepository) GetByToken(ctx context.Context, token string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE token = $1`
	return scanApplication(r.q.QueryRowContext(ctx, query, token))
}

func (r *applicationRepository) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE token = $1 FOR UPDATE`
	return scanApplication(r.q.QueryRowContext(ctx, query, token))
}

func (r *applicationRepository) GetPendingByPair(ctx context.Context, applicantEmail, sponsorEmail string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE LOWER(applicant_email) = LOWER($1) AND LOWER(sponsor_email) = LOWER($2) AND status = $3`
	return scanApplication(r.q.QueryRowContext(ctx, query, applicantEmail, sponsorEmail, domain.ApplicationStatusPending))
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) error {
	query := `UPDATE applications
	          SET status = $1, token = $2, approved_at = $3, approved_by_id = $4, rejected_at = $5
	          WHERE id = $6 AND status = $7`
	logger.DatabaseCall("UPDATE", "applications", "applicationID", app.ID, "from", expected, "to", app.Status)
	res, err := r.q.ExecContext(ctx, query, app.Status, app.Token, app.ApprovedAt, app.ApprovedByID, app.RejectedAt, app.ID, expected)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "applicationID", app.ID)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", n, nil, "applicationID", app.ID)
	if n == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *applicationRepository) ListOverduePending(ctx context.Context, now time.Time, limit int) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE status = $1 AND expires_at < $2
	          ORDER BY expires_at
	          LIMIT $3`
	rows, err := r.q.QueryContext(ctx, query, domain.ApplicationStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

func scanApplication(row rowScanner) (*domain.Application, error) {
	app := &domain.Application{}
	var profile []byte
	var approvedAt, rejectedAt sql.NullTime
	var approvedByID sql.NullString

	err := row.Scan(
		&app.ID, &app.Token, &app.ApplicantName, &app.ApplicantEmail, &app.SponsorEmail, &app.SponsorMemberID,
		&profile, &app.Status, &app.VerificationCode, &app.CreatedAt, &app.ExpiresAt,
		&approvedAt, &approvedByID, &rejectedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &app.Profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile of application %s: %w", app.ID, err)
		}
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		app.ApprovedAt = &t
	}
	if approvedByID.Valid {
		id := approvedByID.String
		app.ApprovedByID = &id
	}
	if rejectedAt.Valid {
		t := rejectedAt.Time
		app.RejectedAt = &t
	}
	return app, nil
}
