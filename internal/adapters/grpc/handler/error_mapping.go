package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/pin-roster/internal/core/auth"
	"github.com/ogurasousui/pin-roster/internal/core/employee"
	"github.com/ogurasousui/pin-roster/internal/core/ledger"
	"github.com/ogurasousui/pin-roster/internal/core/state"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case employee.IsValidation(err),
		errors.Is(err, ledger.ErrInvalidCode),
		errors.Is(err, auth.ErrInvalidPassword):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, auth.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, state.ErrStorage):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
