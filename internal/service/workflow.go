package service

import (
	"context"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
)

// workflowService wraps the approval engine with the out-of-band notifications
// the engine itself never sends.
type workflowService struct {
	ApplicationService
	notifier Notifier
}

func NewWorkflowService(engine ApplicationService, notifier Notifier) ApplicationService {
	return &workflowService{ApplicationService: engine, notifier: notifier}
}

func (w *workflowService) CreateApplication(ctx context.Context, input domain.ApplicationInput) (*domain.Application, bool, error) {
	app, created, err := w.ApplicationService.CreateApplication(ctx, input)
	if err != nil || !created {
		return app, created, err
	}
	// The application exists either way; a lost email is an operator problem, not a caller error.
	if err := w.notifier.SendApprovalRequest(ctx, app); err != nil {
		logger.WithApplication(app.ID).Error("Failed to notify sponsor", "error", err)
	}
	return app, created, nil
}

func (w *workflowService) ApproveApplication(ctx context.Context, token, sponsorMemberID, verificationCode string) (*ApprovalResult, error) {
	res, err := w.ApplicationService.ApproveApplication(ctx, token, sponsorMemberID, verificationCode)
	if err != nil {
		return nil, err
	}
	if err := w.notifier.SendApplicationApproved(ctx, res.Application, res.Member); err != nil {
		logger.WithApplication(res.Application.ID).Error("Failed to notify applicant", "error", err)
	}
	return res, nil
}
