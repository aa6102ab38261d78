package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
)

// toStatus translates service errors into gRPC status errors. Storage and
// unknown failures are logged here and reported without detail.
func toStatus(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codeFor(err)
	if code == codes.Internal {
		logger.ErrorContext(ctx, "Request failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrInvalidCode):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSponsorNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrLinkExpired):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrSponsorInactive),
		errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrSelfApproval):
		return codes.PermissionDenied
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return codes.ResourceExhausted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
