package commands_test

import (
	"context"
	"testing"
	"time"

	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/chat"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustGeoPoint(t *testing.T, lat, lon float64, label string) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lon, label)
	require.NoError(t, err)
	return point
}

// chainDrafts builds a contiguous two-leg route through a shared relay point.
func chainDrafts(t *testing.T) []delivery.SegmentDraft {
	t.Helper()

	pickup := mustGeoPoint(t, 52.5200, 13.4050, "pickup")
	relay := mustGeoPoint(t, 52.9000, 12.8000, "relay")
	dropoff := mustGeoPoint(t, 53.5511, 9.9937, "dropoff")

	return []delivery.SegmentDraft{
		{Start: pickup, End: relay, DistanceKm: 60, EstimatedDuration: 90 * time.Minute, CostCents: 7200},
		{Start: relay, End: dropoff, DistanceKm: 200, EstimatedDuration: 4 * time.Hour, CostCents: 24000},
	}
}

func createActiveChain(t *testing.T) *delivery.PartialDelivery {
	t.Helper()

	aggregate, err := delivery.NewPartialDelivery(kernel.NewUUID(), kernel.NewUUID(), chainDrafts(t))
	require.NoError(t, err)
	require.NoError(t, aggregate.Activate())

	return aggregate
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockPartialDeliveryRepository struct{ mock.Mock }

func (m *MockPartialDeliveryRepository) Add(ctx context.Context, aggregate *delivery.PartialDelivery) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockPartialDeliveryRepository) Update(ctx context.Context, aggregate *delivery.PartialDelivery) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockPartialDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.PartialDelivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.PartialDelivery), args.Error(1)
}

func (m *MockPartialDeliveryRepository) GetBySegment(ctx context.Context, segmentID kernel.UUID) (*delivery.PartialDelivery, error) {
	args := m.Called(ctx, segmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.PartialDelivery), args.Error(1)
}

func (m *MockPartialDeliveryRepository) GetAllActive(ctx context.Context) ([]*delivery.PartialDelivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delivery.PartialDelivery), args.Error(1)
}

func (m *MockPartialDeliveryRepository) AssignSegment(ctx context.Context, segmentID, courierID kernel.UUID) error {
	args := m.Called(ctx, segmentID, courierID)
	return args.Error(0)
}

type MockHandoverRepository struct{ mock.Mock }

func (m *MockHandoverRepository) Add(ctx context.Context, aggregate *handover.Handover) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockHandoverRepository) Update(ctx context.Context, aggregate *handover.Handover) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockHandoverRepository) Get(ctx context.Context, id kernel.UUID) (*handover.Handover, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*handover.Handover), args.Error(1)
}

func (m *MockHandoverRepository) GetPendingBySegments(ctx context.Context, fromSegmentID, toSegmentID kernel.UUID) (*handover.Handover, error) {
	args := m.Called(ctx, fromSegmentID, toSegmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*handover.Handover), args.Error(1)
}

func (m *MockHandoverRepository) GetAwaitingOlderThan(ctx context.Context, cutoff time.Time) ([]*handover.Handover, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*handover.Handover), args.Error(1)
}

type MockChatRepository struct{ mock.Mock }

func (m *MockChatRepository) Add(ctx context.Context, message *chat.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) GetByPartialDelivery(ctx context.Context, partialDeliveryID kernel.UUID) ([]*chat.Message, error) {
	args := m.Called(ctx, partialDeliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.Message), args.Error(1)
}

type MockOriginalJobStore struct{ mock.Mock }

func (m *MockOriginalJobStore) GetOriginalJob(ctx context.Context, id kernel.UUID) (ports.OriginalJob, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.OriginalJob), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) PartialDeliveryRepository() ports.PartialDeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.PartialDeliveryRepository)
}

func (m *MockUoW) HandoverRepository() ports.HandoverRepository {
	args := m.Called()
	return args.Get(0).(ports.HandoverRepository)
}

func (m *MockUoW) ChatRepository() ports.ChatRepository {
	args := m.Called()
	return args.Get(0).(ports.ChatRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDeliveryUoWFactory struct{ mock.Mock }

func (m *MockDeliveryUoWFactory) Create() commands.DeliveryUoW {
	args := m.Called()
	return args.Get(0).(commands.DeliveryUoW)
}

type MockChatUoWFactory struct{ mock.Mock }

func (m *MockChatUoWFactory) Create() commands.ChatUoW {
	args := m.Called()
	return args.Get(0).(commands.ChatUoW)
}
