package client

import (
	"context"
	"errors"

	"github.com/sakif/pinboard/internal/apperror"
)

// Message converts err into the text a user should see. It never returns
// an empty string for a non-nil error.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperror.AppError
	switch {
	case errors.Is(err, ErrBusy):
		return "Please wait for the current action to finish."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, apperror.ErrNetwork):
		return "Could not reach the server. Please try again."
	case errors.Is(err, apperror.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, apperror.ErrRateLimited):
		return "Too many requests. Please wait a moment and try again."
	case errors.Is(err, apperror.ErrValidation) && errors.As(err, &appErr) && appErr.Message != "":
		return appErr.Message
	case errors.Is(err, apperror.ErrNotFound):
		return "Not found. It may have been deleted."
	case errors.Is(err, apperror.ErrForbidden):
		return "You do not have permission to do that."
	case errors.Is(err, apperror.ErrConflict) && errors.As(err, &appErr) && appErr.Message != "":
		return appErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}
