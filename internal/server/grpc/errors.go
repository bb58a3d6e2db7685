package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Internal failures are
// logged and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	var ve *models.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, common.ErrorInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUniqueViolation):
		return status.Error(codes.AlreadyExists, common.ErrorUniqueViolation.Error())
	case errors.Is(err, common.ErrorForeignKeyViolation):
		return status.Error(codes.FailedPrecondition, common.ErrorForeignKeyViolation.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.ErrorForbidden.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.Error(ctx, "request failed", "op", op, "error", err)
	return status.Error(codes.Internal, "internal error")
}
