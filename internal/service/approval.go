package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
	"membership-backend/internal/repository"
)

func (s *applicationService) ApproveApplication(ctx context.Context, token, sponsorMemberID, verificationCode string) (*ApprovalResult, error) {
	const method = "applicationService.ApproveApplication"
	logger.EnterMethod(method, "sponsorMemberID", sponsorMemberID)

	approved, err := s.approve(ctx, token, sponsorMemberID, verificationCode)
	if err != nil {
		err = transitionError(method, err)
		logger.ExitMethodWithError(method, err, !errors.Is(err, domain.ErrStorage), "sponsorMemberID", sponsorMemberID)
		return nil, err
	}

	log := logger.WithApplication(approved.ID)
	log.Info("Application approved", "approvedByID", sponsorMemberID)

	// The approval is committed; a failed materialization is logged and left
	// for a retry, never rolled back into the application.
	member, err := s.materializeWithRetry(ctx, approved)
	if err != nil {
		log.Error("Failed to materialize member after approval", "error", err, "applicantEmail", approved.ApplicantEmail)
	}

	logger.ExitMethod(method, "applicationID", approved.ID)
	return &ApprovalResult{Application: approved, Member: member}, nil
}

func (s *applicationService) approve(ctx context.Context, token, sponsorMemberID, verificationCode string) (*domain.Application, error) {
	app, err := s.GetApplication(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := requirePending(app); err != nil {
		return nil, err
	}

	var approved *domain.Application
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		now := s.now()

		locked, err := tx.Applications().GetByTokenForUpdate(ctx, token)
		if errors.Is(err, domain.ErrNotFound) {
			// The token was rotated by an approval that committed after our read.
			return domain.ErrInvalidState
		}
		if err != nil {
			return err
		}
		if err := requirePending(locked); err != nil {
			return err
		}
		if now.After(locked.ExpiresAt) {
			return domain.ErrLinkExpired
		}
		if locked.IsSelfSponsored() {
			return domain.ErrSelfApproval
		}
		if verificationCode != locked.VerificationCode {
			return domain.ErrInvalidCode
		}

		sponsor, err := lockSponsor(ctx, tx, sponsorMemberID)
		if err != nil {
			return err
		}
		if !domain.EmailsEqual(sponsor.Email, locked.SponsorEmail) {
			return domain.ErrNotAuthorized
		}
		if domain.EmailsEqual(sponsor.Email, locked.ApplicantEmail) {
			return domain.ErrSelfApproval
		}
		if err := s.limiter.Admit(sponsor, now); err != nil {
			return err
		}

		next := *locked
		next.Status = domain.ApplicationStatusApproved
		next.ApprovedAt = &now
		next.ApprovedByID = &sponsor.ID
		next.Token = domain.UsedTokenPrefix + locked.Token
		if err := tx.Applications().UpdateStatus(ctx, &next, domain.ApplicationStatusPending); err != nil {
			return err
		}

		sponsor.UpdatedAt = now
		if err := tx.Members().UpdateApprovalWindow(ctx, sponsor); err != nil {
			return err
		}
		if err := appendAudit(ctx, tx, next.ID, domain.AuditEventApproved, &sponsor.ID, now, nil); err != nil {
			return err
		}
		approved = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func lockSponsor(ctx context.Context, tx repository.Store, sponsorMemberID string) (*domain.Member, error) {
	if _, err := uuid.Parse(sponsorMemberID); err != nil {
		return nil, domain.ErrSponsorNotFound
	}
	sponsor, err := tx.Members().GetByIDForUpdate(ctx, sponsorMemberID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSponsorNotFound
	}
	if err != nil {
		return nil, err
	}
	if !sponsor.Active {
		return nil, domain.ErrSponsorInactive
	}
	return sponsor, nil
}

func (s *applicationService) materializeWithRetry(ctx context.Context, app *domain.Application) (*domain.Member, error) {
	attempts := s.policy.MaterializeAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		member, err := s.materializer.Materialize(ctx, app)
		if err == nil {
			return member, nil
		}
		lastErr = err
		logger.WithApplication(app.ID).Warn("Member materialization attempt failed", "attempt", attempt, "error", err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return nil, lastErr
}

func (s *applicationService) RejectApplication(ctx context.Context, token, actor string) (*domain.Application, error) {
	const method = "applicationService.RejectApplication"
	logger.EnterMethod(method, "actor", actor)

	rejected, err := s.reject(ctx, token, actor)
	if err != nil {
		err = transitionError(method, err)
		logger.ExitMethodWithError(method, err, !errors.Is(err, domain.ErrStorage))
		return nil, err
	}

	logger.WithApplication(rejected.ID).Info("Application rejected", "actor", actor)
	logger.ExitMethod(method, "applicationID", rejected.ID)
	return rejected, nil
}

func (s *applicationService) reject(ctx context.Context, token, actor string) (*domain.Application, error) {
	app, err := s.GetApplication(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := requireRejectable(app); err != nil {
		return nil, err
	}

	var performedBy *string
	if actor != "" {
		performedBy = &actor
	}

	var rejected *domain.Application
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		now := s.now()

		locked, err := tx.Applications().GetByTokenForUpdate(ctx, token)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidState
		}
		if err != nil {
			return err
		}
		if err := requireRejectable(locked); err != nil {
			return err
		}

		next := *locked
		next.Status = domain.ApplicationStatusRejected
		next.RejectedAt = &now
		if err := tx.Applications().UpdateStatus(ctx, &next, domain.ApplicationStatusPending); err != nil {
			return err
		}
		if err := appendAudit(ctx, tx, next.ID, domain.AuditEventRejected, performedBy, now, nil); err != nil {
			return err
		}
		rejected = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// requirePending maps a terminal status to the error an approver should see.
func requirePending(app *domain.Application) error {
	if !app.Status.IsTerminal() {
		return nil
	}
	if app.Status == domain.ApplicationStatusExpired {
		return domain.ErrLinkExpired
	}
	return domain.ErrInvalidState
}

// requireRejectable reports every terminal status, expired included, as InvalidState.
func requireRejectable(app *domain.Application) error {
	if app.Status.IsTerminal() {
		return domain.ErrInvalidState
	}
	return nil
}

// transitionError maps a lost status CAS to InvalidState and wraps
// infrastructure failures.
func transitionError(op string, err error) error {
	if errors.Is(err, domain.ErrConflict) {
		return domain.ErrInvalidState
	}
	return storageOr(op, err)
}
