package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/pkg/errs"
)

// statusFromError maps domain and application errors onto HTTP statuses.
// Contention and state conflicts are 409, ownership violations 403,
// verification failures 422.
func statusFromError(err error) int {
	var notFound *errs.ObjectNotFoundError
	var required *errs.ValueIsRequiredError
	var invalid *errs.ValueIsInvalidError
	var outOfRange *errs.ValueIsOutOfRangeError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, delivery.ErrSegmentAlreadyAssigned):
		return http.StatusConflict
	case errors.Is(err, delivery.ErrNotSegmentOwner):
		return http.StatusForbidden
	case errors.Is(err, delivery.ErrSegmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, handover.ErrInvalidVerificationCode),
		errors.Is(err, handover.ErrVerificationLocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, handover.ErrHandoverTimeout),
		errors.Is(err, commands.ErrHandoverNotConfirmed),
		errors.Is(err, commands.ErrHandoverAlreadyPending),
		errors.Is(err, commands.ErrSegmentIsLast):
		return http.StatusConflict
	case errors.As(err, &required), errors.As(err, &outOfRange):
		return http.StatusBadRequest
	case errors.As(err, &invalid):
		// Invalid state transitions surface as invalid-value errors from
		// the status machines; treat them as conflicts, not bad input.
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the uniform error body for the given error.
func fail(ctx echo.Context, err error) error {
	status := statusFromError(err)
	return ctx.JSON(status, Error{Code: status, Message: err.Error()})
}

// badRequest writes a 400 with the given message.
func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
