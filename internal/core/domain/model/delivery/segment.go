package delivery

import (
	"errors"
	"fmt"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"
	"partialdelivery/internal/pkg/guard"
)

// Domain errors for segment operations.
var (
	// ErrSegmentIsNotConstructed is returned when using an improperly initialized Segment.
	ErrSegmentIsNotConstructed = errors.New("Segment must be created via NewSegment or RestoreSegment")

	// ErrSegmentAlreadyAssigned is returned when a courier tries to accept a
	// segment that another courier already holds. The loser must re-query the
	// available segments rather than retry.
	ErrSegmentAlreadyAssigned = errors.New("segment is already assigned to another courier")

	// ErrNotSegmentOwner is returned when a lifecycle mutation is attempted by
	// a courier that does not own the segment.
	ErrNotSegmentOwner = errors.New("courier does not own this segment")
)

// SegmentDraft is the segmenter's output for one consecutive waypoint pair.
// It carries the boundary points and the estimator's figures, but has no
// identity yet; NewPartialDelivery turns drafts into Segment entities.
type SegmentDraft struct {
	Start               kernel.GeoPoint
	End                 kernel.GeoPoint
	DistanceKm          float64
	EstimatedDuration   time.Duration
	DurationApproximate bool
	CostCents           int64
}

// Segment is one courier's leg of a decomposed delivery route.
//
// Invariants:
//   - sequenceIndex is 0-based, contiguous and unique within the parent chain
//   - at most one courier holds the segment in Accepted/InProgress at any time
//   - start/end boundaries never change after creation; a re-opened segment
//     keeps its sequenceIndex and boundaries
type Segment struct {
	// id uniquely identifies the segment
	id kernel.UUID
	// partialDeliveryID references the owning chain
	partialDeliveryID kernel.UUID
	// sequenceIndex is the physical route position within the chain
	sequenceIndex int
	// courierID is the assigned courier (nil until accepted)
	courierID *kernel.UUID
	// start is where this leg begins
	start kernel.GeoPoint
	// end is where this leg ends; coincides with the next leg's start
	end kernel.GeoPoint
	// distanceKm is the estimated travel distance
	distanceKm float64
	// estimatedDuration is the estimated travel time
	estimatedDuration time.Duration
	// durationApproximate marks a fallback estimate produced without the provider
	durationApproximate bool
	// costCents is the price shown to couriers before they accept
	costCents int64
	// status is the current lifecycle state
	status SegmentStatus
	// reproposals counts how many times the segment was re-opened after failure
	reproposals int
	// guard ensures the segment was properly constructed
	guard guard.ConstructorGuard
}

// NewSegment creates a Proposed segment from a draft. Used by the
// PartialDelivery constructor; segments are never created outside a chain.
func NewSegment(id, partialDeliveryID kernel.UUID, sequenceIndex int, draft SegmentDraft) (*Segment, error) {
	if sequenceIndex < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("sequenceIndex is invalid",
			fmt.Errorf("%d is negative", sequenceIndex))
	}

	if err := errors.Join(
		id.Validate(),
		partialDeliveryID.Validate(),
		draft.Start.Validate(),
		draft.End.Validate(),
	); err != nil {
		return nil, err
	}

	return &Segment{
		id:                  id,
		partialDeliveryID:   partialDeliveryID,
		sequenceIndex:       sequenceIndex,
		start:               draft.Start,
		end:                 draft.End,
		distanceKm:          draft.DistanceKm,
		estimatedDuration:   draft.EstimatedDuration,
		durationApproximate: draft.DurationApproximate,
		costCents:           draft.CostCents,
		status:              SegmentProposed,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

// RestoreSegment rebuilds a segment from persistence without re-running
// creation-time validation of the draft figures.
func RestoreSegment(
	id, partialDeliveryID kernel.UUID,
	sequenceIndex int,
	courierID *kernel.UUID,
	start, end kernel.GeoPoint,
	distanceKm float64,
	estimatedDuration time.Duration,
	durationApproximate bool,
	costCents int64,
	status SegmentStatus,
	reproposals int,
) (*Segment, error) {
	if err := errors.Join(id.Validate(), partialDeliveryID.Validate(), status.Validate()); err != nil {
		return nil, err
	}

	return &Segment{
		id:                  id,
		partialDeliveryID:   partialDeliveryID,
		sequenceIndex:       sequenceIndex,
		courierID:           courierID,
		start:               start,
		end:                 end,
		distanceKm:          distanceKm,
		estimatedDuration:   estimatedDuration,
		durationApproximate: durationApproximate,
		costCents:           costCents,
		status:              status,
		reproposals:         reproposals,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Segment was created via a constructor.
func (s *Segment) Validate() error {
	if s == nil {
		return ErrSegmentIsNotConstructed
	}
	return s.guard.Validate(ErrSegmentIsNotConstructed)
}

// ID returns the segment's unique identifier.
func (s *Segment) ID() kernel.UUID { return s.id }

// PartialDeliveryID returns the owning chain's identifier.
func (s *Segment) PartialDeliveryID() kernel.UUID { return s.partialDeliveryID }

// SequenceIndex returns the 0-based position within the chain.
func (s *Segment) SequenceIndex() int { return s.sequenceIndex }

// Courier returns the assigned courier's ID, or nil if unassigned.
func (s *Segment) Courier() *kernel.UUID { return s.courierID }

// StartPoint returns the leg's start point.
func (s *Segment) StartPoint() kernel.GeoPoint { return s.start }

// EndPoint returns the leg's end point.
func (s *Segment) EndPoint() kernel.GeoPoint { return s.end }

// DistanceKm returns the estimated travel distance in kilometres.
func (s *Segment) DistanceKm() float64 { return s.distanceKm }

// EstimatedDuration returns the estimated travel time.
func (s *Segment) EstimatedDuration() time.Duration { return s.estimatedDuration }

// DurationApproximate reports whether the duration came from the
// distance/average-speed fallback rather than the route provider.
func (s *Segment) DurationApproximate() bool { return s.durationApproximate }

// CostCents returns the estimated price in minor currency units.
func (s *Segment) CostCents() int64 { return s.costCents }

// Status returns the current lifecycle state.
func (s *Segment) Status() SegmentStatus { return s.status }

// Reproposals returns how many times the segment has been re-opened.
func (s *Segment) Reproposals() int { return s.reproposals }

// IsOwnedBy reports whether the given courier currently holds the segment.
func (s *Segment) IsOwnedBy(courierID kernel.UUID) bool {
	return s.courierID != nil && s.courierID.IsEqual(courierID)
}

// Accept assigns the segment to a courier, first-writer-wins.
//
// Business rules:
//   - re-sending Accept for a segment already held by the same courier is a
//     no-op, not an error
//   - a segment held by another courier yields ErrSegmentAlreadyAssigned
//   - only Proposed segments can be accepted
func (s *Segment) Accept(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if s.IsOwnedBy(courierID) && (s.status == SegmentAccepted || s.status == SegmentInProgress) {
		return nil
	}

	if s.courierID != nil && !s.status.IsTerminal() && s.status != SegmentProposed {
		return ErrSegmentAlreadyAssigned
	}

	newStatus, err := s.status.Accept()
	if err != nil {
		return err
	}

	s.status = newStatus
	s.courierID = &courierID
	return nil
}

// Start marks pickup by the owning courier.
func (s *Segment) Start(courierID kernel.UUID) error {
	if !s.IsOwnedBy(courierID) {
		return ErrNotSegmentOwner
	}

	newStatus, err := s.status.Start()
	if err != nil {
		return err
	}

	s.status = newStatus
	return nil
}

// Complete marks confirmed handover or final delivery by the owning courier.
func (s *Segment) Complete(courierID kernel.UUID) error {
	if !s.IsOwnedBy(courierID) {
		return ErrNotSegmentOwner
	}

	newStatus, err := s.status.Complete()
	if err != nil {
		return err
	}

	s.status = newStatus
	return nil
}

// Fail marks the segment as failed by its owning courier (or by the system
// acting on the courier's behalf after a staleness window).
func (s *Segment) Fail(courierID kernel.UUID) error {
	if !s.IsOwnedBy(courierID) {
		return ErrNotSegmentOwner
	}

	newStatus, err := s.status.Fail()
	if err != nil {
		return err
	}

	s.status = newStatus
	return nil
}

// Reopen returns a failed segment to the Proposed pool for a new courier.
// SequenceIndex and boundaries are unchanged; the re-proposal counter grows.
func (s *Segment) Reopen() error {
	newStatus, err := s.status.Reopen()
	if err != nil {
		return err
	}

	s.status = newStatus
	s.courierID = nil
	s.reproposals++
	return nil
}

// Cancel withdraws the segment together with its parent chain.
// Already-terminal segments are left untouched.
func (s *Segment) Cancel() error {
	if s.status.IsTerminal() {
		return nil
	}

	newStatus, err := s.status.Cancel()
	if err != nil {
		return err
	}

	s.status = newStatus
	return nil
}
