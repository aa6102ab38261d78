package grpc

import (
	"context"
	"slices"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	memberIDKey    = "member-id"
	memberRolesKey = "member-roles"

	// RoleAdmin may register members, toggle their status and run the sweeper on demand.
	RoleAdmin = "admin"
)

// GetMemberIDFromContext extracts the caller's member ID from the gRPC metadata.
// It expects a header named "member-id", set by the auth interceptor.
func GetMemberIDFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	ids := md.Get(memberIDKey)
	if len(ids) == 0 || ids[0] == "" {
		return "", status.Errorf(codes.Unauthenticated, "member_id is not provided in metadata")
	}
	return ids[0], nil
}

func requireRole(ctx context.Context, role string) error {
	if _, err := GetMemberIDFromContext(ctx); err != nil {
		return err
	}
	md, _ := metadata.FromIncomingContext(ctx)
	if !slices.Contains(md.Get(memberRolesKey), role) {
		return status.Errorf(codes.PermissionDenied, "%s role required", role)
	}
	return nil
}
