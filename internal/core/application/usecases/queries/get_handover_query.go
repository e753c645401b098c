package queries

import (
	"errors"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrGetHandoverQueryIsNotConstructed = errors.New(
	"GetHandoverQuery must be created via NewGetHandoverQuery constructor",
)

// GetHandoverQuery retrieves one handover. The verification code is only
// disclosed to the courier of the outgoing segment; everyone else sees the
// protocol state without the code.
type GetHandoverQuery struct {
	handoverID  kernel.UUID
	requestedBy kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetHandoverQuery creates a query for the given handover on behalf of
// the requesting participant.
func NewGetHandoverQuery(handoverID, requestedBy kernel.UUID) (GetHandoverQuery, error) {
	if err := errors.Join(handoverID.Validate(), requestedBy.Validate()); err != nil {
		return GetHandoverQuery{}, err
	}

	return GetHandoverQuery{
		handoverID:  handoverID,
		requestedBy: requestedBy,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetHandoverQuery) Validate() error {
	return q.guard.Validate(ErrGetHandoverQueryIsNotConstructed)
}

// HandoverID returns the handover to fetch.
func (q GetHandoverQuery) HandoverID() kernel.UUID {
	return q.handoverID
}

// RequestedBy returns the participant asking.
func (q GetHandoverQuery) RequestedBy() kernel.UUID {
	return q.requestedBy
}

// GetHandoverQueryResponse is the handover's protocol state.
// VerificationCode is empty unless the requester is the outgoing courier.
type GetHandoverQueryResponse struct {
	ID                kernel.UUID
	PartialDeliveryID kernel.UUID
	FromSegmentID     kernel.UUID
	ToSegmentID       kernel.UUID
	Location          kernel.GeoCoord
	EstimatedTime     time.Time
	Status            string
	Attempts          int
	VerificationCode  string
}
