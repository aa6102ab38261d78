package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"membership-backend/internal/security"
)

const (
	publicMethod    = "/membership.v1.SponsorshipService/CreateApplication"
	protectedMethod = "/membership.v1.SponsorshipService/ApproveApplication"
)

// captureHandler records the metadata the wrapped handler observes.
func captureHandler(seen *metadata.MD) grpc.UnaryHandler {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		*seen = md
		return "ok", nil
	}
}

func TestAuthInterceptor_Public(t *testing.T) {
	tm := security.NewTokenManager("secret", time.Hour)
	unary := NewAuthInterceptor(tm).Unary()

	t.Run("NoMetadata", func(t *testing.T) {
		var seen metadata.MD
		res, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: publicMethod}, captureHandler(&seen))
		require.NoError(t, err)
		assert.Equal(t, "ok", res)
		assert.Empty(t, seen.Get("member-id"))
	})

	t.Run("StripsSpoofedIdentity", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("member-id", "spoofed", "member-roles", "admin"))
		var seen metadata.MD
		_, err := unary(ctx, nil, &grpc.UnaryServerInfo{FullMethod: publicMethod}, captureHandler(&seen))
		require.NoError(t, err)
		assert.Empty(t, seen.Get("member-id"))
		assert.Empty(t, seen.Get("member-roles"))
	})
}

func TestAuthInterceptor_Protected(t *testing.T) {
	tm := security.NewTokenManager("secret", time.Hour)
	unary := NewAuthInterceptor(tm).Unary()
	info := &grpc.UnaryServerInfo{FullMethod: protectedMethod}

	t.Run("MissingToken", func(t *testing.T) {
		var seen metadata.MD
		_, err := unary(context.Background(), nil, info, captureHandler(&seen))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Nil(t, seen)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer garbage"))
		var seen metadata.MD
		_, err := unary(ctx, nil, info, captureHandler(&seen))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("TokenFromOtherSecret", func(t *testing.T) {
		other := security.NewTokenManager("other-secret", time.Hour)
		token, err := other.GenerateAccessToken("member-1", "bob@x.com", nil)
		require.NoError(t, err)

		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
		var seen metadata.MD
		_, err = unary(ctx, nil, info, captureHandler(&seen))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := tm.GenerateAccessToken("member-1", "bob@x.com", []string{"admin"})
		require.NoError(t, err)

		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"authorization", "Bearer "+token,
			"member-id", "spoofed",
		))
		var seen metadata.MD
		res, err := unary(ctx, nil, info, captureHandler(&seen))
		require.NoError(t, err)
		assert.Equal(t, "ok", res)
		assert.Equal(t, []string{"member-1"}, seen.Get("member-id"))
		assert.Equal(t, []string{"admin"}, seen.Get("member-roles"))
	})

	t.Run("UnknownMethodRequiresToken", func(t *testing.T) {
		var seen metadata.MD
		_, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/membership.v1.Unknown/Do"}, captureHandler(&seen))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}
