package commands_test

import (
	"context"
	"testing"
	"time"

	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func confirmedHandoverBetween(
	t *testing.T,
	aggregate *delivery.PartialDelivery,
	from, to *delivery.Segment,
	receiver kernel.UUID,
) *handover.Handover {
	t.Helper()
	pending, err := handover.NewHandover(
		kernel.NewUUID(), aggregate.ID(), from.ID(), to.ID(),
		mustGeoPoint(t, 52.9000, 12.8000, "relay"), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, pending.Confirm(pending.VerificationCode(), receiver, testAttemptCap))
	return pending
}

func TestStartSegmentCommandHandler_Handle_FirstSegment(t *testing.T) {
	ctx := context.Background()
	aggregate := createActiveChain(t)
	segment := aggregate.Segments()[0]
	courierID := kernel.NewUUID()
	require.NoError(t, segment.Accept(courierID))

	repo := &MockPartialDeliveryRepository{}
	repo.On("GetBySegment", ctx, segment.ID()).Return(aggregate, nil)
	repo.On("Update", ctx, aggregate).Return(nil)

	handoverRepo := &MockHandoverRepository{}

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("PartialDeliveryRepository").Return(repo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockUoWFactory{}
	factory.On("Create").Return(uow)

	publisher := &MockEventPublisher{}
	publisher.On("Publish", ctx, mock.AnythingOfType("events.SegmentStatusChanged")).Return(nil)

	handler := commands.NewStartSegmentCommandHandler(factory, publisher)
	cmd, err := commands.NewStartSegmentCommand(segment.ID(), courierID)
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, delivery.SegmentInProgress, segment.Status())
	handoverRepo.AssertNotCalled(t, "GetPendingBySegments", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSegmentCommandHandler_Handle_ConfirmedHandoverCompletes(t *testing.T) {
	ctx := context.Background()
	aggregate := createActiveChain(t)
	first, second := aggregate.Segments()[0], aggregate.Segments()[1]
	sender := kernel.NewUUID()
	receiver := kernel.NewUUID()
	require.NoError(t, first.Accept(sender))
	require.NoError(t, first.Start(sender))
	require.NoError(t, second.Accept(receiver))

	pending := confirmedHandoverBetween(t, aggregate, first, second, receiver)

	// The outgoing courier already dropped the package and completed.
	require.NoError(t, first.Complete(sender))

	repo := &MockPartialDeliveryRepository{}
	repo.On("GetBySegment", ctx, second.ID()).Return(aggregate, nil)
	repo.On("Update", ctx, aggregate).Return(nil)

	handoverRepo := &MockHandoverRepository{}
	handoverRepo.On("GetPendingBySegments", ctx, first.ID(), second.ID()).Return(pending, nil)
	handoverRepo.On("Update", ctx, pending).Return(nil)

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("PartialDeliveryRepository").Return(repo)
	uow.On("HandoverRepository").Return(handoverRepo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockUoWFactory{}
	factory.On("Create").Return(uow)

	publisher := &MockEventPublisher{}
	publisher.On("Publish", ctx, mock.AnythingOfType("events.SegmentStatusChanged")).Return(nil)

	handler := commands.NewStartSegmentCommandHandler(factory, publisher)
	cmd, err := commands.NewStartSegmentCommand(second.ID(), receiver)
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, delivery.SegmentInProgress, second.Status())
	assert.Equal(t, handover.StatusCompleted, pending.Status(),
		"handover completes only once both sides have acted")
	handoverRepo.AssertExpectations(t)
}

func TestStartSegmentCommandHandler_Handle_UnconfirmedHandoverBlocks(t *testing.T) {
	ctx := context.Background()
	aggregate := createActiveChain(t)
	first, second := aggregate.Segments()[0], aggregate.Segments()[1]
	sender := kernel.NewUUID()
	receiver := kernel.NewUUID()
	require.NoError(t, first.Accept(sender))
	require.NoError(t, first.Start(sender))
	require.NoError(t, second.Accept(receiver))

	pending, err := handover.NewHandover(
		kernel.NewUUID(), aggregate.ID(), first.ID(), second.ID(),
		mustGeoPoint(t, 52.9000, 12.8000, "relay"), time.Now().UTC())
	require.NoError(t, err)

	repo := &MockPartialDeliveryRepository{}
	repo.On("GetBySegment", ctx, second.ID()).Return(aggregate, nil)

	handoverRepo := &MockHandoverRepository{}
	handoverRepo.On("GetPendingBySegments", ctx, first.ID(), second.ID()).Return(pending, nil)

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("PartialDeliveryRepository").Return(repo)
	uow.On("HandoverRepository").Return(handoverRepo)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockUoWFactory{}
	factory.On("Create").Return(uow)

	handler := commands.NewStartSegmentCommandHandler(factory, &MockEventPublisher{})
	cmd, err := commands.NewStartSegmentCommand(second.ID(), receiver)
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrHandoverNotConfirmed)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestStartSegmentCommandHandler_Handle_NoPendingHandoverAllowsPickup(t *testing.T) {
	ctx := context.Background()
	aggregate := createActiveChain(t)
	first, second := aggregate.Segments()[0], aggregate.Segments()[1]
	receiver := kernel.NewUUID()
	require.NoError(t, second.Accept(receiver))

	repo := &MockPartialDeliveryRepository{}
	repo.On("GetBySegment", ctx, second.ID()).Return(aggregate, nil)
	repo.On("Update", ctx, aggregate).Return(nil)

	handoverRepo := &MockHandoverRepository{}
	handoverRepo.On("GetPendingBySegments", ctx, first.ID(), second.ID()).
		Return(nil, errs.NewObjectNotFoundError("handover", second.ID()))

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("PartialDeliveryRepository").Return(repo)
	uow.On("HandoverRepository").Return(handoverRepo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockUoWFactory{}
	factory.On("Create").Return(uow)

	publisher := &MockEventPublisher{}
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	handler := commands.NewStartSegmentCommandHandler(factory, publisher)
	cmd, err := commands.NewStartSegmentCommand(second.ID(), receiver)
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, delivery.SegmentInProgress, second.Status())
}
