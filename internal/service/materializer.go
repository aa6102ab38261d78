package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/domain"
	"membership-backend/internal/repository"
)

// MemberMaterializer turns an approved application into a Member. It upserts
// by applicant email, so running it twice for the same application is safe.
type MemberMaterializer struct {
	store repository.Store
	now   func() time.Time
}

func NewMemberMaterializer(store repository.Store, opts ...Option) *MemberMaterializer {
	o := buildOptions(opts)
	return &MemberMaterializer{store: store, now: o.now}
}

func (m *MemberMaterializer) Materialize(ctx context.Context, app *domain.Application) (*domain.Member, error) {
	var out *domain.Member
	err := m.store.WithinTx(ctx, func(tx repository.Store) error {
		now := m.now()

		existing, err := tx.Members().GetByEmail(ctx, app.ApplicantEmail)
		switch {
		case err == nil:
			existing.Name = app.ApplicantName
			existing.Profile = app.Profile
			existing.Active = true
			existing.UpdatedAt = now
			if err := tx.Members().Update(ctx, existing); err != nil {
				return err
			}
			out = existing
			return nil
		case errors.Is(err, domain.ErrNotFound):
			member := &domain.Member{
				ID:        uuid.NewString(),
				Email:     domain.NormalizeEmail(app.ApplicantEmail),
				Name:      app.ApplicantName,
				Active:    true,
				Profile:   app.Profile,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Members().Create(ctx, member); err != nil {
				return err
			}
			out = member
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
