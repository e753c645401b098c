package delivery

import (
	"errors"
	"fmt"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"
	"partialdelivery/internal/pkg/guard"
)

// BoundaryToleranceMeters is the radius within which the end of segment n
// and the start of segment n+1 are considered the same physical point.
const BoundaryToleranceMeters = 100.0

// Domain errors for partial delivery operations.
var (
	// ErrPartialDeliveryIsNotConstructed is returned when using an improperly
	// initialized PartialDelivery.
	ErrPartialDeliveryIsNotConstructed = errors.New(
		"PartialDelivery must be created via NewPartialDelivery or RestorePartialDelivery")

	// ErrChainDiscontinuity is returned at creation time when the end of a
	// segment does not coincide with the start of the next one.
	ErrChainDiscontinuity = errors.New("segment chain is discontinuous")

	// ErrChainHasNoSegments is returned when attempting to create a chain
	// without segments.
	ErrChainHasNoSegments = errors.New("segment chain is empty")

	// ErrSegmentNotFound is returned when the chain holds no segment with the
	// requested identifier.
	ErrSegmentNotFound = errors.New("segment not found in chain")
)

// FailOutcome describes what happened to the chain after a segment failure.
type FailOutcome int

const (
	// FailOutcomeReproposed means the segment was re-opened for a new courier.
	FailOutcomeReproposed FailOutcome = iota + 1
	// FailOutcomeChainCancelled means the re-proposal budget was exhausted and
	// the whole chain cascaded to cancelled.
	FailOutcomeChainCancelled
)

// PartialDelivery is the aggregate root for the decomposition of one original
// delivery job into an ordered chain of segments.
//
// Invariants:
//   - segment order is the physical route order and is immutable once the
//     chain is activated
//   - segment[i].end coincides with segment[i+1].start within the boundary
//     tolerance; violating this at creation time is a validation error
//   - status is completed iff every segment is completed; the parent status is
//     recomputed from the children on every child transition, never stored as
//     an independent fact
type PartialDelivery struct {
	// id uniquely identifies the chain
	id kernel.UUID
	// originalJobID references the job this chain decomposes
	originalJobID kernel.UUID
	// status is the derived lifecycle state of the whole chain
	status Status
	// createdAt is when the chain was created
	createdAt time.Time
	// segments is the ordered route decomposition (index == sequenceIndex)
	segments []*Segment
	// guard ensures the chain was properly constructed
	guard guard.ConstructorGuard
}

// NewPartialDelivery creates a Pending chain from the segmenter's drafts.
// The contiguity invariant is validated here: the drafts must form an
// unbroken route within BoundaryToleranceMeters. Fails with
// ErrChainDiscontinuity if endpoints don't align.
func NewPartialDelivery(id, originalJobID kernel.UUID, drafts []SegmentDraft) (*PartialDelivery, error) {
	if err := errors.Join(id.Validate(), originalJobID.Validate()); err != nil {
		return nil, err
	}

	if len(drafts) == 0 {
		return nil, ErrChainHasNoSegments
	}

	for i := 0; i+1 < len(drafts); i++ {
		ok, err := drafts[i].End.Coincides(drafts[i+1].Start, BoundaryToleranceMeters)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: segment %d ends at %s but segment %d starts at %s",
				ErrChainDiscontinuity, i, drafts[i].End, i+1, drafts[i+1].Start)
		}
	}

	segments := make([]*Segment, 0, len(drafts))
	for i, draft := range drafts {
		segment, err := NewSegment(kernel.NewUUID(), id, i, draft)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}

	return &PartialDelivery{
		id:            id,
		originalJobID: originalJobID,
		status:        StatusPending,
		createdAt:     time.Now().UTC(),
		segments:      segments,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// RestorePartialDelivery rebuilds a chain from persistence. Segments must be
// supplied in sequence order; the contiguity invariant is not re-checked
// because it was enforced at creation.
func RestorePartialDelivery(
	id, originalJobID kernel.UUID,
	status Status,
	createdAt time.Time,
	segments []*Segment,
) (*PartialDelivery, error) {
	if err := errors.Join(id.Validate(), originalJobID.Validate(), status.Validate()); err != nil {
		return nil, err
	}

	for i, segment := range segments {
		if err := segment.Validate(); err != nil {
			return nil, err
		}
		if segment.SequenceIndex() != i {
			return nil, errs.NewValueIsInvalidErrorWithCause("segments are invalid",
				fmt.Errorf("segment at position %d has sequence index %d", i, segment.SequenceIndex()))
		}
	}

	return &PartialDelivery{
		id:            id,
		originalJobID: originalJobID,
		status:        status,
		createdAt:     createdAt,
		segments:      segments,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the chain was created via a constructor.
func (d *PartialDelivery) Validate() error {
	if d == nil {
		return ErrPartialDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrPartialDeliveryIsNotConstructed)
}

// ID returns the chain's unique identifier.
func (d *PartialDelivery) ID() kernel.UUID { return d.id }

// OriginalJobID returns the identifier of the decomposed job.
func (d *PartialDelivery) OriginalJobID() kernel.UUID { return d.originalJobID }

// Status returns the chain's lifecycle state.
func (d *PartialDelivery) Status() Status { return d.status }

// CreatedAt returns when the chain was created.
func (d *PartialDelivery) CreatedAt() time.Time { return d.createdAt }

// Segments returns the ordered route decomposition.
func (d *PartialDelivery) Segments() []*Segment { return d.segments }

// SegmentByID finds a segment in the chain, or ErrSegmentNotFound.
func (d *PartialDelivery) SegmentByID(segmentID kernel.UUID) (*Segment, error) {
	for _, segment := range d.segments {
		if segment.ID().IsEqual(segmentID) {
			return segment, nil
		}
	}
	return nil, ErrSegmentNotFound
}

// Activate opens the chain's segments for courier acceptance.
func (d *PartialDelivery) Activate() error {
	newStatus, err := d.status.Activate()
	if err != nil {
		return err
	}

	d.status = newStatus
	return nil
}

// AcceptSegment assigns a segment to a courier, first-writer-wins.
// Accepting is only possible while the chain is active.
func (d *PartialDelivery) AcceptSegment(segmentID, courierID kernel.UUID) (*Segment, error) {
	if d.status != StatusActive {
		return nil, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid chain status to accept segments", d.status))
	}

	segment, err := d.SegmentByID(segmentID)
	if err != nil {
		return nil, err
	}

	if err := segment.Accept(courierID); err != nil {
		return nil, err
	}

	return segment, nil
}

// StartSegment marks pickup by the owning courier.
func (d *PartialDelivery) StartSegment(segmentID, courierID kernel.UUID) (*Segment, error) {
	segment, err := d.SegmentByID(segmentID)
	if err != nil {
		return nil, err
	}

	if err := segment.Start(courierID); err != nil {
		return nil, err
	}

	return segment, nil
}

// CompleteSegment marks a segment as completed by the owning courier and
// recomputes the derived chain status. The chain is completed iff every
// segment is completed; the recomputation happens in the same mutation, so
// readers never observe a divergence between parent and children.
func (d *PartialDelivery) CompleteSegment(segmentID, courierID kernel.UUID) (*Segment, error) {
	segment, err := d.SegmentByID(segmentID)
	if err != nil {
		return nil, err
	}

	if err := segment.Complete(courierID); err != nil {
		return nil, err
	}

	if d.allSegmentsCompleted() {
		newStatus, completeErr := d.status.Complete()
		if completeErr != nil {
			return nil, completeErr
		}
		d.status = newStatus
	}

	return segment, nil
}

// FailSegment records a segment failure by its owning courier. The segment
// re-opens as Proposed with boundaries unchanged, unless it has already been
// re-proposed retryBudget times, in which case the whole chain is cancelled
// and every non-terminal segment cascades to cancelled.
func (d *PartialDelivery) FailSegment(segmentID, courierID kernel.UUID, retryBudget int) (*Segment, FailOutcome, error) {
	segment, err := d.SegmentByID(segmentID)
	if err != nil {
		return nil, 0, err
	}

	if err := segment.Fail(courierID); err != nil {
		return nil, 0, err
	}

	if segment.Reproposals() >= retryBudget {
		if err := d.Cancel(); err != nil {
			return nil, 0, err
		}
		return segment, FailOutcomeChainCancelled, nil
	}

	if err := segment.Reopen(); err != nil {
		return nil, 0, err
	}

	return segment, FailOutcomeReproposed, nil
}

// Cancel aborts the chain and cascades cancellation to every non-terminal
// segment. The cascade happens synchronously within the aggregate so no
// reader can observe a cancelled chain with a still-proposed segment.
func (d *PartialDelivery) Cancel() error {
	newStatus, err := d.status.Cancel()
	if err != nil {
		return err
	}

	for _, segment := range d.segments {
		if err := segment.Cancel(); err != nil {
			return err
		}
	}

	d.status = newStatus
	return nil
}

func (d *PartialDelivery) allSegmentsCompleted() bool {
	for _, segment := range d.segments {
		if segment.Status() != SegmentCompleted {
			return false
		}
	}
	return true
}
