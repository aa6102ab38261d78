package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
	"membership-backend/internal/repository"
)

type memberService struct {
	store repository.Store
	now   func() time.Time
}

func NewMemberService(store repository.Store, opts ...Option) MemberService {
	o := buildOptions(opts)
	return &memberService{store: store, now: o.now}
}

// RegisterMember creates an active member directly, as an administrator would
// when seeding sponsors.
func (s *memberService) RegisterMember(ctx context.Context, email, name string) (*domain.Member, error) {
	const method = "memberService.RegisterMember"
	logger.EnterMethod(method, "email", email)

	verr := &domain.ValidationError{}
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	checkEmail(verr, "email", email)
	if name == "" {
		verr.Add("name", "is required")
	}
	if verr.HasErrors() {
		logger.ExitMethodWithError(method, verr, true)
		return nil, verr
	}

	now := s.now()
	m := &domain.Member{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Members().Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			verr.Add("email", "is already registered")
			return nil, verr
		}
		err = storageOr(method, err)
		logger.ExitMethodWithError(method, err, false)
		return nil, err
	}

	logger.Info("Member registered", "memberID", m.ID)
	logger.ExitMethod(method, "memberID", m.ID)
	return m, nil
}

func (s *memberService) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	m, err := s.store.Members().GetByID(ctx, id)
	if err != nil {
		return nil, storageOr("memberService.GetMember", err)
	}
	return m, nil
}

func (s *memberService) SetMemberActive(ctx context.Context, id string, active bool) (*domain.Member, error) {
	const method = "memberService.SetMemberActive"
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	var out *domain.Member
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		m, err := tx.Members().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		m.Active = active
		m.UpdatedAt = s.now()
		if err := tx.Members().Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, storageOr(method, err)
	}

	logger.Info("Member activity changed", "memberID", id, "active", active)
	return out, nil
}
