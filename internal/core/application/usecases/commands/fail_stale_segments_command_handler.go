package commands

import (
	"context"
	"errors"
	"time"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/ports"
)

// FailStaleSegmentsCommandHandler fails in-progress segments held by
// couriers who went silent past the staleness window. It delegates every
// failure to the regular FailSegment handler, which owns the re-proposal
// budget and the cascade decision.
type FailStaleSegmentsCommandHandler struct {
	uowFactory  DeliveryUoWFactory
	tracker     ports.LocationTracker
	failHandler FailSegmentCommandHandler
	window      time.Duration
}

// NewFailStaleSegmentsCommandHandler creates the sweep handler.
func NewFailStaleSegmentsCommandHandler(
	uowFactory DeliveryUoWFactory,
	tracker ports.LocationTracker,
	failHandler FailSegmentCommandHandler,
	window time.Duration,
) FailStaleSegmentsCommandHandler {
	return FailStaleSegmentsCommandHandler{
		uowFactory:  uowFactory,
		tracker:     tracker,
		failHandler: failHandler,
		window:      window,
	}
}

// Handle fails the in-progress segment of every stale courier. A courier
// without an in-progress segment is skipped; couriers that never reported
// are not flagged at all. Returns the number of failed segments.
func (h FailStaleSegmentsCommandHandler) Handle(ctx context.Context, cmd FailStaleSegmentsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	stale := h.tracker.StaleCouriers(h.window)
	if len(stale) == 0 {
		return 0, nil
	}

	failed := 0
	var sweepErr error
	for _, entry := range stale {
		inProgress, err := h.segmentStillInProgress(ctx, entry)
		if err != nil {
			sweepErr = errors.Join(sweepErr, err)
			continue
		}
		if !inProgress {
			continue
		}

		failCmd, err := NewFailSegmentCommand(entry.SegmentID, entry.CourierID)
		if err != nil {
			sweepErr = errors.Join(sweepErr, err)
			continue
		}
		if err := h.failHandler.Handle(ctx, failCmd); err != nil {
			// Another actor may have legitimately advanced the segment
			// between the staleness snapshot and the failure attempt.
			sweepErr = errors.Join(sweepErr, err)
			continue
		}
		failed++
	}
	return failed, sweepErr
}

// segmentStillInProgress checks that the segment named in the staleness
// snapshot is still in progress under the same courier. The reported
// segment may have completed, failed, or changed hands since the courier
// last spoke.
func (h FailStaleSegmentsCommandHandler) segmentStillInProgress(ctx context.Context, entry ports.StaleCourier) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	chain, err := uow.PartialDeliveryRepository().Get(ctx, entry.PartialDeliveryID)
	if err != nil {
		return false, err
	}

	segment, err := chain.SegmentByID(entry.SegmentID)
	if err != nil {
		return false, err
	}
	return segment.Status() == delivery.SegmentInProgress && segment.IsOwnedBy(entry.CourierID), nil
}
