package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	postgres_adapter "partialdelivery/internal/adapters/out/postgres"
	"partialdelivery/internal/adapters/out/postgres/chatrepo"
	"partialdelivery/internal/adapters/out/postgres/deliveryrepo"
	"partialdelivery/internal/adapters/out/postgres/handoverrepo"
	"partialdelivery/internal/core/domain/model/chat"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
	"partialdelivery/internal/pkg/errs"
)

// UnitOfWorkIntegrationTestSuite exercises the GORM unit of work and the
// three repositories against a real PostgreSQL instance.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite starts the PostgreSQL container and migrates the schema.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&deliveryrepo.PartialDeliveryDTO{},
		&deliveryrepo.SegmentDTO{},
		&handoverrepo.HandoverDTO{},
		&chatrepo.ChatMessageDTO{},
	)
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest truncates all tables so tests do not interfere.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE partial_deliveries, segments, handovers, chat_messages").Error
	suite.Require().NoError(err)
}

// TearDownSuite terminates the container.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) mustPoint(lat, lon float64, label string) kernel.GeoPoint {
	point, err := kernel.NewGeoPoint(lat, lon, label)
	suite.Require().NoError(err)
	return point
}

// newChain builds a two-segment active chain fixture.
func (suite *UnitOfWorkIntegrationTestSuite) newChain() *delivery.PartialDelivery {
	pickup := suite.mustPoint(52.52, 13.405, "pickup")
	relay := suite.mustPoint(52.9, 12.8, "relay")
	dropoff := suite.mustPoint(53.5511, 9.9937, "dropoff")

	drafts := []delivery.SegmentDraft{
		{Start: pickup, End: relay, DistanceKm: 60, EstimatedDuration: 90 * time.Minute, CostCents: 7200},
		{Start: relay, End: dropoff, DistanceKm: 190, EstimatedDuration: 4 * time.Hour, CostCents: 22800},
	}
	chain, err := delivery.NewPartialDelivery(kernel.NewUUID(), kernel.NewUUID(), drafts)
	suite.Require().NoError(err)
	suite.Require().NoError(chain.Activate())
	return chain
}

func (suite *UnitOfWorkIntegrationTestSuite) persist(chain *delivery.PartialDelivery) {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.PartialDeliveryRepository().Add(ctx, chain))
	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "repeated begin must not nest")
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().NoError(uow.Rollback(ctx), "rollback after commit is a no-op")

	suite.Require().Error(uow.Commit(ctx), "commit without begin must fail")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestChainRoundTrip() {
	ctx := context.Background()
	chain := suite.newChain()
	suite.persist(chain)

	uow := suite.factory.Create()
	loaded, err := uow.PartialDeliveryRepository().Get(ctx, chain.ID())
	suite.Require().NoError(err)

	suite.Equal(chain.ID(), loaded.ID())
	suite.Equal(delivery.StatusActive, loaded.Status())
	suite.Require().Len(loaded.Segments(), 2)
	suite.Equal(0, loaded.Segments()[0].SequenceIndex())
	suite.Equal(1, loaded.Segments()[1].SequenceIndex())
	suite.Equal("relay", loaded.Segments()[0].EndPoint().Label())
	suite.Equal(int64(7200), loaded.Segments()[0].CostCents())
	suite.Equal(90*time.Minute, loaded.Segments()[0].EstimatedDuration())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestGetBySegment() {
	ctx := context.Background()
	chain := suite.newChain()
	suite.persist(chain)

	uow := suite.factory.Create()
	loaded, err := uow.PartialDeliveryRepository().GetBySegment(ctx, chain.Segments()[1].ID())
	suite.Require().NoError(err)
	suite.Equal(chain.ID(), loaded.ID())

	_, err = uow.PartialDeliveryRepository().GetBySegment(ctx, kernel.NewUUID())
	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestAssignSegmentLinearizesClaims() {
	ctx := context.Background()
	chain := suite.newChain()
	suite.persist(chain)

	segmentID := chain.Segments()[0].ID()
	winner := kernel.NewUUID()
	loser := kernel.NewUUID()

	repo := suite.factory.Create().PartialDeliveryRepository()
	suite.Require().NoError(repo.AssignSegment(ctx, segmentID, winner))

	err := repo.AssignSegment(ctx, segmentID, loser)
	suite.Require().ErrorIs(err, delivery.ErrSegmentAlreadyAssigned)

	suite.Require().NoError(repo.AssignSegment(ctx, segmentID, winner),
		"re-claiming an owned segment must stay idempotent")

	loaded, err := repo.GetBySegment(ctx, segmentID)
	suite.Require().NoError(err)
	suite.Equal(delivery.SegmentAccepted, loaded.Segments()[0].Status())
	suite.Require().NotNil(loaded.Segments()[0].Courier())
	suite.Equal(winner, *loaded.Segments()[0].Courier())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackDiscardsChanges() {
	ctx := context.Background()
	chain := suite.newChain()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.PartialDeliveryRepository().Add(ctx, chain))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().PartialDeliveryRepository().Get(ctx, chain.ID())
	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUpdatePersistsClearedCourier() {
	ctx := context.Background()
	chain := suite.newChain()
	courier := kernel.NewUUID()
	suite.persist(chain)

	segmentID := chain.Segments()[0].ID()
	_, err := chain.AcceptSegment(segmentID, courier)
	suite.Require().NoError(err)
	_, outcome, err := chain.FailSegment(segmentID, courier, 3)
	suite.Require().NoError(err)
	suite.Equal(delivery.FailOutcomeReproposed, outcome)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.PartialDeliveryRepository().Update(ctx, chain))
	suite.Require().NoError(uow.Commit(ctx))

	loaded, err := suite.factory.Create().PartialDeliveryRepository().Get(ctx, chain.ID())
	suite.Require().NoError(err)
	suite.Equal(delivery.SegmentProposed, loaded.Segments()[0].Status())
	suite.Nil(loaded.Segments()[0].Courier(), "failed segment must drop its courier")
	suite.Equal(1, loaded.Segments()[0].Reproposals())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestHandoverRoundTrip() {
	ctx := context.Background()
	chain := suite.newChain()
	suite.persist(chain)

	aggregate, err := handover.NewHandover(
		kernel.NewUUID(), chain.ID(),
		chain.Segments()[0].ID(), chain.Segments()[1].ID(),
		suite.mustPoint(52.9, 12.8, "relay"),
		time.Now().UTC().Add(30*time.Minute),
	)
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.HandoverRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Commit(ctx))

	repo := suite.factory.Create().HandoverRepository()

	loaded, err := repo.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.Equal(aggregate.VerificationCode(), loaded.VerificationCode())
	suite.Equal(handover.StatusAwaitingConfirmation, loaded.Status())

	pending, err := repo.GetPendingBySegments(ctx, chain.Segments()[0].ID(), chain.Segments()[1].ID())
	suite.Require().NoError(err)
	suite.Equal(aggregate.ID(), pending.ID())

	stale, err := repo.GetAwaitingOlderThan(ctx, time.Now().UTC().Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(stale, 1)
	suite.Equal(aggregate.ID(), stale[0].ID())

	fresh, err := repo.GetAwaitingOlderThan(ctx, time.Now().UTC().Add(-time.Hour))
	suite.Require().NoError(err)
	suite.Empty(fresh)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestChatHistoryKeepsOrder() {
	ctx := context.Background()
	chain := suite.newChain()
	suite.persist(chain)

	sender := kernel.NewUUID()
	base := time.Now().UTC().Truncate(time.Microsecond)
	contents := []string{"first", "second", "third"}

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	for i, content := range contents {
		message, err := chat.NewMessage(kernel.NewUUID(), chain.ID(), sender, content, base.Add(time.Duration(i)*time.Second))
		suite.Require().NoError(err)
		suite.Require().NoError(uow.ChatRepository().Add(ctx, message))
	}
	suite.Require().NoError(uow.Commit(ctx))

	history, err := suite.factory.Create().ChatRepository().GetByPartialDelivery(ctx, chain.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, len(contents))
	for i, message := range history {
		suite.Equal(contents[i], message.Content())
	}
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
