package commands_test

import (
	"context"
	"testing"
	"time"

	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type expireFixture struct {
	aggregate *delivery.PartialDelivery
	pending   *handover.Handover

	handoverRepo *MockHandoverRepository
	deliveryRepo *MockPartialDeliveryRepository
	uow          *MockUoW
	factory      *MockUoWFactory
	publisher    *MockEventPublisher
	handler      commands.ExpireHandoversCommandHandler
}

// newExpireFixture builds an active chain whose first courier initiated a
// handover. The second segment stays unassigned unless the test claims it.
func newExpireFixture(t *testing.T) *expireFixture {
	t.Helper()
	ctx := context.Background()

	aggregate := createActiveChain(t)
	sender := kernel.NewUUID()
	first, second := aggregate.Segments()[0], aggregate.Segments()[1]
	require.NoError(t, first.Accept(sender))
	require.NoError(t, first.Start(sender))

	pending, err := handover.NewHandover(
		kernel.NewUUID(), aggregate.ID(), first.ID(), second.ID(),
		mustGeoPoint(t, 52.9000, 12.8000, "relay"), time.Now().UTC().Add(30*time.Minute))
	require.NoError(t, err)

	handoverRepo := &MockHandoverRepository{}
	handoverRepo.On("GetAwaitingOlderThan", ctx, mock.AnythingOfType("time.Time")).
		Return([]*handover.Handover{pending}, nil)

	deliveryRepo := &MockPartialDeliveryRepository{}
	deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil)

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("HandoverRepository").Return(handoverRepo)
	uow.On("PartialDeliveryRepository").Return(deliveryRepo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockUoWFactory{}
	factory.On("Create").Return(uow)

	publisher := &MockEventPublisher{}

	return &expireFixture{
		aggregate:    aggregate,
		pending:      pending,
		handoverRepo: handoverRepo,
		deliveryRepo: deliveryRepo,
		uow:          uow,
		factory:      factory,
		publisher:    publisher,
		handler:      commands.NewExpireHandoversCommandHandler(factory, publisher, testHandoverWindow),
	}
}

func Test_ExpireHandoversCommandHandler_AbandonsOverdueHandover(t *testing.T) {
	f := newExpireFixture(t)
	f.handoverRepo.On("Update", mock.Anything, f.pending).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.HandoverAbandoned")).Return(nil)

	count, err := f.handler.Handle(context.Background(), commands.NewExpireHandoversCommand())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, handover.StatusCancelled, f.pending.Status())
	f.uow.AssertCalled(t, "Commit", mock.Anything)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, events.HandoverAbandoned{
		PartialDeliveryID: f.aggregate.ID(),
		HandoverID:        f.pending.ID(),
		FromSegmentID:     f.pending.FromSegmentID(),
	})
}

func Test_ExpireHandoversCommandHandler_KeepsHandoverWithClaimedIncomingSegment(t *testing.T) {
	f := newExpireFixture(t)
	require.NoError(t, f.aggregate.Segments()[1].Accept(kernel.NewUUID()))

	count, err := f.handler.Handle(context.Background(), commands.NewExpireHandoversCommand())

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, handover.StatusAwaitingConfirmation, f.pending.Status())
	f.handoverRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func Test_ExpireHandoversCommandHandler_NothingOverdue(t *testing.T) {
	ctx := context.Background()

	handoverRepo := &MockHandoverRepository{}
	handoverRepo.On("GetAwaitingOlderThan", ctx, mock.AnythingOfType("time.Time")).
		Return([]*handover.Handover{}, nil)

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("HandoverRepository").Return(handoverRepo)
	uow.On("PartialDeliveryRepository").Return(&MockPartialDeliveryRepository{})
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockUoWFactory{}
	factory.On("Create").Return(uow)

	handler := commands.NewExpireHandoversCommandHandler(factory, &MockEventPublisher{}, testHandoverWindow)
	count, err := handler.Handle(ctx, commands.NewExpireHandoversCommand())

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
