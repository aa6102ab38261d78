package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/domain"
	"membership-backend/internal/repository/memory"
	"membership-backend/internal/service"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store *memory.Store
	clock *fakeClock
	svc   service.ApplicationService
	ctx   context.Context
}

func testPolicy() service.ApprovalPolicy {
	p := service.DefaultApprovalPolicy()
	p.MaterializeAttempts = 1
	return p
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, testPolicy())
}

func newFixtureWithPolicy(t *testing.T, policy service.ApprovalPolicy) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeClock{now: t0}
	return &fixture{
		store: store,
		clock: clock,
		svc:   service.NewApplicationService(store, policy, service.WithClock(clock.Now)),
		ctx:   context.Background(),
	}
}

func (f *fixture) addMember(email string, active bool) domain.Member {
	m := domain.Member{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      email,
		Active:    active,
		CreatedAt: t0.Add(-365 * 24 * time.Hour),
		UpdatedAt: t0.Add(-365 * 24 * time.Hour),
	}
	f.store.PutMember(m)
	return m
}

func (f *fixture) member(t *testing.T, id string) *domain.Member {
	t.Helper()
	m, err := f.store.Members().GetByID(f.ctx, id)
	require.NoError(t, err)
	return m
}

func (f *fixture) create(t *testing.T, applicant, sponsor string) *domain.Application {
	t.Helper()
	app, created, err := f.svc.CreateApplication(f.ctx, validInput(applicant, sponsor))
	require.NoError(t, err)
	require.True(t, created)
	return app
}

func (f *fixture) events(t *testing.T, applicationID string) []domain.AuditEvent {
	t.Helper()
	entries, err := f.svc.ListAuditLog(f.ctx, applicationID)
	require.NoError(t, err)
	out := make([]domain.AuditEvent, len(entries))
	for i, e := range entries {
		out[i] = e.Event
	}
	return out
}

func validInput(applicant, sponsor string) domain.ApplicationInput {
	return domain.ApplicationInput{
		ApplicantName:  "Alice Applicant",
		ApplicantEmail: applicant,
		SponsorEmail:   sponsor,
		Profile: domain.Profile{
			Address:                   "1 Main St",
			ProfessionalQualification: "MSc",
			AreaOfInterest:            "Distributed systems",
			WantsMentor:               true,
		},
	}
}

// offByOne changes the last digit of a verification code.
func offByOne(code string) string {
	b := []byte(code)
	last := b[len(b)-1]
	b[len(b)-1] = '0' + (last-'0'+1)%10
	return string(b)
}
