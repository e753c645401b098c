package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/pkg/errs"
)

func Test_StatusFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"NotFound", errs.NewObjectNotFoundError("partial_delivery", "x"), http.StatusNotFound},
		{"SegmentContention", delivery.ErrSegmentAlreadyAssigned, http.StatusConflict},
		{"NotOwner", delivery.ErrNotSegmentOwner, http.StatusForbidden},
		{"SegmentMissing", delivery.ErrSegmentNotFound, http.StatusNotFound},
		{"WrongCode", handover.ErrInvalidVerificationCode, http.StatusUnprocessableEntity},
		{"Locked", handover.ErrVerificationLocked, http.StatusUnprocessableEntity},
		{"Expired", handover.ErrHandoverTimeout, http.StatusConflict},
		{"UnconfirmedHandover", commands.ErrHandoverNotConfirmed, http.StatusConflict},
		{"MissingValue", errs.NewValueIsRequiredError("reason"), http.StatusBadRequest},
		{"InvalidTransition", errs.NewValueIsInvalidError("status is invalid"), http.StatusConflict},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFromError(tt.err))
		})
	}
}

func Test_StatusFromError_WrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("handling accept"), delivery.ErrSegmentAlreadyAssigned)

	assert.Equal(t, http.StatusConflict, statusFromError(wrapped))
}
