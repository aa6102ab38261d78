package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"membership-backend/internal/service"
)

type SponsorshipHandler struct {
	appSvc service.ApplicationService
}

func NewSponsorshipHandler(appSvc service.ApplicationService) *SponsorshipHandler {
	return &SponsorshipHandler{appSvc: appSvc}
}

func (h *SponsorshipHandler) CreateApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	app, created, err := h.appSvc.CreateApplication(ctx, MapStructToApplicationInput(req))
	if err != nil {
		return nil, toStatus(ctx, "CreateApplication", err)
	}
	return newResponse(map[string]any{
		"application": MapApplicationToStruct(app, false),
		"created":     created,
	})
}

func (h *SponsorshipHandler) GetApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	app, err := h.appSvc.GetApplication(ctx, stringField(req, "token"))
	if err != nil {
		return nil, toStatus(ctx, "GetApplication", err)
	}
	return newResponse(map[string]any{"application": MapApplicationToStruct(app, true)})
}

func (h *SponsorshipHandler) ApproveApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	memberID, err := GetMemberIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	res, err := h.appSvc.ApproveApplication(ctx, stringField(req, "token"), memberID, stringField(req, "verification_code"))
	if err != nil {
		return nil, toStatus(ctx, "ApproveApplication", err)
	}
	// Member is null when the approval committed but materialization did not.
	var member any
	if res.Member != nil {
		member = MapMemberToStruct(res.Member)
	}
	return newResponse(map[string]any{
		"application": MapApplicationToStruct(res.Application, true),
		"member":      member,
	})
}

func (h *SponsorshipHandler) RejectApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	memberID, err := GetMemberIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	app, err := h.appSvc.RejectApplication(ctx, stringField(req, "token"), memberID)
	if err != nil {
		return nil, toStatus(ctx, "RejectApplication", err)
	}
	return newResponse(map[string]any{"application": MapApplicationToStruct(app, true)})
}

func (h *SponsorshipHandler) SweepExpiredApplications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRole(ctx, RoleAdmin); err != nil {
		return nil, err
	}
	n, err := h.appSvc.SweepExpiredApplications(ctx)
	if err != nil {
		return nil, toStatus(ctx, "SweepExpiredApplications", err)
	}
	return newResponse(map[string]any{"transitioned": int64(n)})
}

// ListAuditLog is an operator read for compliance and debugging.
func (h *SponsorshipHandler) ListAuditLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRole(ctx, RoleAdmin); err != nil {
		return nil, err
	}
	entries, err := h.appSvc.ListAuditLog(ctx, stringField(req, "application_id"))
	if err != nil {
		return nil, toStatus(ctx, "ListAuditLog", err)
	}
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = MapAuditEntryToStruct(e)
	}
	return newResponse(map[string]any{"entries": out})
}

func newResponse(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}
