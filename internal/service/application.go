package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
	"membership-backend/internal/repository"
	"membership-backend/internal/security"
)

type applicationService struct {
	store        repository.Store
	policy       ApprovalPolicy
	limiter      RateLimiter
	materializer *MemberMaterializer
	now          func() time.Time
}

func NewApplicationService(store repository.Store, policy ApprovalPolicy, opts ...Option) ApplicationService {
	o := buildOptions(opts)
	return &applicationService{
		store:        store,
		policy:       policy,
		limiter:      RateLimiter{Window: policy.RateLimitWindow, Quota: policy.RateLimitQuota},
		materializer: NewMemberMaterializer(store, opts...),
		now:          o.now,
	}
}

func (s *applicationService) CreateApplication(ctx context.Context, input domain.ApplicationInput) (*domain.Application, bool, error) {
	const method = "applicationService.CreateApplication"
	logger.EnterMethod(method, "applicantEmail", input.ApplicantEmail, "sponsorEmail", input.SponsorEmail)

	if err := validateApplicationInput(&input); err != nil {
		logger.ExitMethodWithError(method, err, true)
		return nil, false, err
	}

	var app *domain.Application
	created := false
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Applications().GetPendingByPair(ctx, input.ApplicantEmail, input.SponsorEmail)
		switch {
		case err == nil && !existing.IsOverdue(s.now()):
			app = existing
			return nil
		case err == nil:
			// The pending slot is held by a dead link; retire it before issuing a new one.
			if _, err := s.expire(ctx, tx, existing, "create"); err != nil {
				return err
			}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if err := s.resolveSponsor(ctx, tx, &input); err != nil {
			return err
		}

		app, err = s.newApplication(input)
		if err != nil {
			return err
		}
		if err := tx.Applications().Create(ctx, app); err != nil {
			return err
		}
		created = true
		return appendAudit(ctx, tx, app.ID, domain.AuditEventCreated, nil, app.CreatedAt, nil)
	})

	if errors.Is(err, domain.ErrConflict) {
		// A concurrent create took the pending slot between our lookup and insert.
		existing, getErr := s.store.Applications().GetPendingByPair(ctx, input.ApplicantEmail, input.SponsorEmail)
		if getErr == nil {
			logger.ExitMethod(method, "applicationID", existing.ID, "created", false)
			return existing, false, nil
		}
		err = getErr
	}
	if err != nil {
		err = storageOr(method, err)
		logger.ExitMethodWithError(method, err, !errors.Is(err, domain.ErrStorage))
		return nil, false, err
	}

	if created {
		logger.WithApplication(app.ID).Info("Application created", "sponsorMemberID", app.SponsorMemberID, "expiresAt", app.ExpiresAt)
	}
	logger.ExitMethod(method, "applicationID", app.ID, "created", created)
	return app, created, nil
}

func (s *applicationService) newApplication(input domain.ApplicationInput) (*domain.Application, error) {
	token, err := security.NewToken()
	if err != nil {
		return nil, err
	}
	code, err := security.NewVerificationCode()
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &domain.Application{
		ID:               uuid.NewString(),
		Token:            token,
		ApplicantName:    input.ApplicantName,
		ApplicantEmail:   input.ApplicantEmail,
		SponsorEmail:     input.SponsorEmail,
		SponsorMemberID:  input.SponsorMemberID,
		Profile:          input.Profile,
		Status:           domain.ApplicationStatusPending,
		VerificationCode: code,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.policy.LinkTTL),
	}, nil
}

// resolveSponsor binds the input to an existing member, by id when given and
// otherwise by the sponsor email.
func (s *applicationService) resolveSponsor(ctx context.Context, tx repository.Store, input *domain.ApplicationInput) error {
	verr := &domain.ValidationError{}
	if input.SponsorMemberID != "" {
		sponsor, err := tx.Members().GetByID(ctx, input.SponsorMemberID)
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add("sponsor_member_id", "no member with this id")
			return verr
		}
		if err != nil {
			return err
		}
		if !domain.EmailsEqual(sponsor.Email, input.SponsorEmail) {
			verr.Add("sponsor_member_id", "does not match sponsor_email")
			return verr
		}
		return nil
	}

	sponsor, err := tx.Members().GetByEmail(ctx, input.SponsorEmail)
	if errors.Is(err, domain.ErrNotFound) {
		verr.Add("sponsor_email", "is not a registered member")
		return verr
	}
	if err != nil {
		return err
	}
	input.SponsorMemberID = sponsor.ID
	return nil
}

// GetApplication returns the application behind token. An overdue pending
// application is expired before it is returned.
func (s *applicationService) GetApplication(ctx context.Context, token string) (*domain.Application, error) {
	const method = "applicationService.GetApplication"

	if token == "" || strings.HasPrefix(token, domain.UsedTokenPrefix) {
		return nil, domain.ErrNotFound
	}

	app, err := s.store.Applications().GetByToken(ctx, token)
	if err != nil {
		return nil, storageOr(method, err)
	}
	if !app.IsOverdue(s.now()) {
		return app, nil
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Applications().GetByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		app = locked
		if !locked.IsOverdue(s.now()) {
			return nil
		}
		_, err = s.expire(ctx, tx, locked, "lazy")
		return err
	})
	if err != nil {
		return nil, storageOr(method, err)
	}
	return app, nil
}

func (s *applicationService) SweepExpiredApplications(ctx context.Context) (int, error) {
	const method = "applicationService.SweepExpiredApplications"
	logger.EnterMethod(method)

	now := s.now()
	total := 0
	for {
		batch, err := s.store.Applications().ListOverduePending(ctx, now, s.policy.SweepBatchSize)
		if err != nil {
			err = storageOr(method, err)
			logger.ExitMethodWithError(method, err, false, "transitioned", total)
			return total, err
		}

		transitioned := 0
		for i := range batch {
			app := batch[i]
			var expired bool
			err := s.store.WithinTx(ctx, func(tx repository.Store) error {
				var err error
				expired, err = s.expire(ctx, tx, &app, "sweep")
				return err
			})
			if err != nil {
				err = storageOr(method, err)
				logger.ExitMethodWithError(method, err, false, "applicationID", app.ID, "transitioned", total)
				return total, err
			}
			if expired {
				transitioned++
			}
		}
		total += transitioned

		if len(batch) < s.policy.SweepBatchSize || transitioned == 0 {
			break
		}
	}

	logger.ExitMethod(method, "transitioned", total)
	return total, nil
}

func (s *applicationService) ListAuditLog(ctx context.Context, applicationID string) ([]domain.AuditEntry, error) {
	if _, err := uuid.Parse(applicationID); err != nil {
		return nil, domain.ErrNotFound
	}
	entries, err := s.store.AuditLog().ListFor(ctx, applicationID)
	if err != nil {
		return nil, storageOr("applicationService.ListAuditLog", err)
	}
	return entries, nil
}

// expire moves app from PENDING to EXPIRED if it is still pending at write
// time. It reports false when another writer got there first.
func (s *applicationService) expire(ctx context.Context, tx repository.Store, app *domain.Application, source string) (bool, error) {
	next := *app
	next.Status = domain.ApplicationStatusExpired
	if err := tx.Applications().UpdateStatus(ctx, &next, domain.ApplicationStatusPending); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		return false, err
	}

	exists, err := tx.AuditLog().Exists(ctx, app.ID, domain.AuditEventExpired)
	if err != nil {
		return false, err
	}
	if !exists {
		if err := appendAudit(ctx, tx, app.ID, domain.AuditEventExpired, nil, s.now(), map[string]string{"source": source}); err != nil {
			return false, err
		}
	}

	*app = next
	logger.WithApplication(app.ID).Info("Application expired", "source", source, "expiresAt", app.ExpiresAt)
	return true, nil
}

func appendAudit(ctx context.Context, tx repository.Store, applicationID string, event domain.AuditEvent, performedBy *string, at time.Time, metadata map[string]string) error {
	return tx.AuditLog().Append(ctx, &domain.AuditEntry{
		ApplicationID: applicationID,
		Event:         event,
		PerformedBy:   performedBy,
		At:            at,
		Metadata:      metadata,
	})
}

// storageOr passes workflow errors through and wraps anything else as a StorageError.
func storageOr(op string, err error) error {
	if domain.IsWorkflowError(err) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

var requiredProfileFields = []struct {
	name  string
	value func(p *domain.Profile) *string
}{
	{"profile.address", func(p *domain.Profile) *string { return &p.Address }},
	{"profile.professional_qualification", func(p *domain.Profile) *string { return &p.ProfessionalQualification }},
	{"profile.area_of_interest", func(p *domain.Profile) *string { return &p.AreaOfInterest }},
}

func validateApplicationInput(input *domain.ApplicationInput) error {
	verr := &domain.ValidationError{}

	input.ApplicantName = strings.TrimSpace(input.ApplicantName)
	input.ApplicantEmail = domain.NormalizeEmail(input.ApplicantEmail)
	input.SponsorEmail = domain.NormalizeEmail(input.SponsorEmail)
	input.SponsorMemberID = strings.TrimSpace(input.SponsorMemberID)

	if input.ApplicantName == "" {
		verr.Add("applicant_name", "is required")
	}
	checkEmail(verr, "applicant_email", input.ApplicantEmail)
	checkEmail(verr, "sponsor_email", input.SponsorEmail)
	if input.SponsorMemberID != "" {
		if _, err := uuid.Parse(input.SponsorMemberID); err != nil {
			verr.Add("sponsor_member_id", "must be a member id")
		}
	}
	for _, f := range requiredProfileFields {
		v := f.value(&input.Profile)
		*v = strings.TrimSpace(*v)
		if *v == "" {
			verr.Add(f.name, "is required")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func checkEmail(verr *domain.ValidationError, field, value string) {
	if value == "" {
		verr.Add(field, "is required")
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		verr.Add(field, "must be a valid email address")
	}
}
