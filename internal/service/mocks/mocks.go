// Package mocks holds testify mocks of the service interfaces for handler and job tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"membership-backend/internal/domain"
	"membership-backend/internal/service"
)

// MockApplicationService
type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) CreateApplication(ctx context.Context, input domain.ApplicationInput) (*domain.Application, bool, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Application), args.Bool(1), args.Error(2)
}

func (m *MockApplicationService) GetApplication(ctx context.Context, token string) (*domain.Application, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationService) ApproveApplication(ctx context.Context, token, sponsorMemberID, verificationCode string) (*service.ApprovalResult, error) {
	args := m.Called(ctx, token, sponsorMemberID, verificationCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ApprovalResult), args.Error(1)
}

func (m *MockApplicationService) RejectApplication(ctx context.Context, token, actor string) (*domain.Application, error) {
	args := m.Called(ctx, token, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationService) SweepExpiredApplications(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockApplicationService) ListAuditLog(ctx context.Context, applicationID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

// MockMemberService
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) RegisterMember(ctx context.Context, email, name string) (*domain.Member, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) SetMemberActive(ctx context.Context, id string, active bool) (*domain.Member, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendApprovalRequest(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockNotifier) SendApplicationApproved(ctx context.Context, app *domain.Application, member *domain.Member) error {
	args := m.Called(ctx, app, member)
	return args.Error(0)
}
