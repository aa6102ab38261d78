package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"membership-backend/internal/service"
)

type MemberHandler struct {
	memberSvc service.MemberService
}

func NewMemberHandler(memberSvc service.MemberService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc}
}

func (h *MemberHandler) RegisterMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRole(ctx, RoleAdmin); err != nil {
		return nil, err
	}
	member, err := h.memberSvc.RegisterMember(ctx, stringField(req, "email"), stringField(req, "name"))
	if err != nil {
		return nil, toStatus(ctx, "RegisterMember", err)
	}
	return newResponse(map[string]any{"member": MapMemberToStruct(member)})
}

// GetMember returns the caller when no id is given.
func (h *MemberHandler) GetMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	callerID, err := GetMemberIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id := stringField(req, "id")
	if id == "" {
		id = callerID
	}
	member, err := h.memberSvc.GetMember(ctx, id)
	if err != nil {
		return nil, toStatus(ctx, "GetMember", err)
	}
	return newResponse(map[string]any{"member": MapMemberToStruct(member)})
}

func (h *MemberHandler) SetMemberActive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRole(ctx, RoleAdmin); err != nil {
		return nil, err
	}
	active, ok := req.GetFields()["active"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "active is required")
	}
	member, err := h.memberSvc.SetMemberActive(ctx, stringField(req, "id"), active.GetBoolValue())
	if err != nil {
		return nil, toStatus(ctx, "SetMemberActive", err)
	}
	return newResponse(map[string]any{"member": MapMemberToStruct(member)})
}
