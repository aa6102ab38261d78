package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/domain"
	"membership-backend/internal/service"
	"membership-backend/internal/service/mocks"
)

func TestWorkflowService_CreateApplication(t *testing.T) {
	ctx := context.Background()
	input := validInput("alice@x.com", "bob@x.com")
	app := &domain.Application{ID: "app-1", Token: "tok", SponsorEmail: "bob@x.com"}

	t.Run("NotifiesSponsorOnCreate", func(t *testing.T) {
		engine := new(mocks.MockApplicationService)
		notifier := new(mocks.MockNotifier)
		svc := service.NewWorkflowService(engine, notifier)

		engine.On("CreateApplication", ctx, input).Return(app, true, nil)
		notifier.On("SendApprovalRequest", ctx, app).Return(nil)

		got, created, err := svc.CreateApplication(ctx, input)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, app, got)
		notifier.AssertExpectations(t)
	})

	t.Run("NoNotificationForExistingApplication", func(t *testing.T) {
		engine := new(mocks.MockApplicationService)
		notifier := new(mocks.MockNotifier)
		svc := service.NewWorkflowService(engine, notifier)

		engine.On("CreateApplication", ctx, input).Return(app, false, nil)

		_, created, err := svc.CreateApplication(ctx, input)
		require.NoError(t, err)
		assert.False(t, created)
		notifier.AssertNotCalled(t, "SendApprovalRequest", mock.Anything, mock.Anything)
	})

	t.Run("NotifierFailureIsNotReturned", func(t *testing.T) {
		engine := new(mocks.MockApplicationService)
		notifier := new(mocks.MockNotifier)
		svc := service.NewWorkflowService(engine, notifier)

		engine.On("CreateApplication", ctx, input).Return(app, true, nil)
		notifier.On("SendApprovalRequest", ctx, app).Return(errors.New("smtp down"))

		got, created, err := svc.CreateApplication(ctx, input)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, app, got)
	})

	t.Run("EngineErrorSkipsNotification", func(t *testing.T) {
		engine := new(mocks.MockApplicationService)
		notifier := new(mocks.MockNotifier)
		svc := service.NewWorkflowService(engine, notifier)

		engine.On("CreateApplication", ctx, input).Return(nil, false, domain.ErrValidation)

		_, _, err := svc.CreateApplication(ctx, input)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		notifier.AssertNotCalled(t, "SendApprovalRequest", mock.Anything, mock.Anything)
	})
}

func TestWorkflowService_ApproveApplication(t *testing.T) {
	ctx := context.Background()
	app := &domain.Application{ID: "app-1", ApplicantEmail: "alice@x.com", Status: domain.ApplicationStatusApproved}
	member := &domain.Member{ID: "member-1", Email: "alice@x.com"}

	t.Run("NotifiesApplicant", func(t *testing.T) {
		engine := new(mocks.MockApplicationService)
		notifier := new(mocks.MockNotifier)
		svc := service.NewWorkflowService(engine, notifier)

		engine.On("ApproveApplication", ctx, "tok", "sponsor-1", "123456").
			Return(&service.ApprovalResult{Application: app, Member: member}, nil)
		notifier.On("SendApplicationApproved", ctx, app, member).Return(errors.New("bounced"))

		res, err := svc.ApproveApplication(ctx, "tok", "sponsor-1", "123456")
		require.NoError(t, err)
		assert.Equal(t, member, res.Member)
		notifier.AssertExpectations(t)
	})

	t.Run("FailedApprovalIsNotAnnounced", func(t *testing.T) {
		engine := new(mocks.MockApplicationService)
		notifier := new(mocks.MockNotifier)
		svc := service.NewWorkflowService(engine, notifier)

		engine.On("ApproveApplication", ctx, "tok", "sponsor-1", "000000").Return(nil, domain.ErrInvalidCode)

		_, err := svc.ApproveApplication(ctx, "tok", "sponsor-1", "000000")
		assert.True(t, errors.Is(err, domain.ErrInvalidCode))
		notifier.AssertNotCalled(t, "SendApplicationApproved", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PassesThroughOtherOperations", func(t *testing.T) {
		engine := new(mocks.MockApplicationService)
		svc := service.NewWorkflowService(engine, new(mocks.MockNotifier))

		engine.On("SweepExpiredApplications", ctx).Return(3, nil)
		n, err := svc.SweepExpiredApplications(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}
