package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	httpin "partialdelivery/internal/adapters/in/http"
	"partialdelivery/internal/adapters/in/ws"
	amqpout "partialdelivery/internal/adapters/out/amqp"
	"partialdelivery/internal/adapters/out/identity"
	"partialdelivery/internal/adapters/out/jobsvc"
	"partialdelivery/internal/adapters/out/postgres"
	"partialdelivery/internal/adapters/out/postgres/chatrepo"
	"partialdelivery/internal/adapters/out/routing"
	"partialdelivery/internal/channel"
	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/application/usecases/queries"
	"partialdelivery/internal/core/domain/services"
	"partialdelivery/internal/core/ports"
	"partialdelivery/internal/jobs"

	"github.com/rabbitmq/amqp091-go"
)

// Operational constants of the coordinator. These are policy, not tuning
// knobs, so they are fixed here rather than read from the environment.
const (
	// segmentRetryBudget is how many times a failed segment is re-proposed
	// before the whole chain is cancelled.
	segmentRetryBudget = 3

	// handoverAttemptCap is how many wrong verification codes a handover
	// tolerates before it is abandoned.
	handoverAttemptCap = 5

	// handoverWindow is how long a handover may await confirmation.
	handoverWindow = 10 * time.Minute

	// stalenessWindow is how long a courier may go silent mid-segment
	// before the segment is failed on their behalf.
	stalenessWindow = 5 * time.Minute
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	hub       *channel.Hub
	publisher ports.EventPublisher
	identity  ports.IdentityResolver
	jobStore  ports.OriginalJobStore
	segmenter services.RouteSegmenter

	amqpConn    *amqp091.Connection
	amqpChannel *amqp091.Channel

	logger *slog.Logger
}

// NewCompositionRoot wires every adapter and service from the configuration.
// The AMQP mirror is optional: with an empty AmqpURL events stay in-process.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	hub, err := channel.NewHub(chatrepo.NewGormChatRepository(gormDB), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel hub: %w", err)
	}

	resolver, err := identity.NewJWTResolver([]byte(config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity resolver: %w", err)
	}

	root := &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		hub:        hub,
		publisher:  hub,
		identity:   resolver,
		jobStore:   jobsvc.NewHTTPJobStore(config.JobServiceURL, 0),
		logger:     logger,
	}

	routeResolver := routing.NewHTTPRouteResolver(config.RoutingProviderURL, 0)
	estimator := services.NewCostEstimator(routeResolver, services.DefaultTariff())
	root.segmenter = services.NewRouteSegmenter(estimator)

	if config.AmqpURL != "" {
		conn, ch, err := amqpout.Connect(config.AmqpURL, config.AmqpExchange)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		root.amqpConn = conn
		root.amqpChannel = ch
		root.publisher = amqpout.NewMirrorPublisher(hub, ch, config.AmqpExchange, logger)
	}

	return root, nil
}

// Close releases the broker handles. The database pool is owned by main.
func (c *CompositionRoot) Close() {
	if c.amqpChannel != nil {
		_ = c.amqpChannel.Close()
	}
	if c.amqpConn != nil {
		_ = c.amqpConn.Close()
	}
}

func (c *CompositionRoot) CreateCreatePartialDeliveryCommandHandler() commands.CreatePartialDeliveryCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreatePartialDeliveryCommandHandler(f, c.jobStore, c.segmenter)
}

func (c *CompositionRoot) CreateActivatePartialDeliveryCommandHandler() commands.ActivatePartialDeliveryCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewActivatePartialDeliveryCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateCancelPartialDeliveryCommandHandler() commands.CancelPartialDeliveryCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelPartialDeliveryCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateAcceptSegmentCommandHandler() commands.AcceptSegmentCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptSegmentCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateStartSegmentCommandHandler() commands.StartSegmentCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartSegmentCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateCompleteSegmentCommandHandler() commands.CompleteSegmentCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteSegmentCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateFailSegmentCommandHandler() commands.FailSegmentCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewFailSegmentCommandHandler(f, c.publisher, segmentRetryBudget)
}

func (c *CompositionRoot) CreateInitiateHandoverCommandHandler() commands.InitiateHandoverCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewInitiateHandoverCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateConfirmHandoverCommandHandler() commands.ConfirmHandoverCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmHandoverCommandHandler(f, c.publisher, handoverAttemptCap)
}

func (c *CompositionRoot) CreateSendChatMessageCommandHandler() commands.SendChatMessageCommandHandler {
	var f commands.ChatUoWFactory = FuncChatUoWFactory(func() commands.ChatUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSendChatMessageCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateExpireHandoversCommandHandler() commands.ExpireHandoversCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewExpireHandoversCommandHandler(f, c.publisher, handoverWindow)
}

func (c *CompositionRoot) CreateFailStaleSegmentsCommandHandler() commands.FailStaleSegmentsCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewFailStaleSegmentsCommandHandler(f, c.hub, c.CreateFailSegmentCommandHandler(), stalenessWindow)
}

func (c *CompositionRoot) CreateGetPartialDeliveryQueryHandler() queries.GetPartialDeliveryQueryHandler {
	return queries.NewGetPartialDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableSegmentsQueryHandler() queries.GetAvailableSegmentsQueryHandler {
	return queries.NewGetAvailableSegmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetChatHistoryQueryHandler() queries.GetChatHistoryQueryHandler {
	return queries.NewGetChatHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetHandoverQueryHandler() queries.GetHandoverQueryHandler {
	return queries.NewGetHandoverQueryHandler(c.gormDB)
}

// CreateHTTPServer assembles the REST server with every handler wired.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.identity,
		c.CreateCreatePartialDeliveryCommandHandler(),
		c.CreateActivatePartialDeliveryCommandHandler(),
		c.CreateCancelPartialDeliveryCommandHandler(),
		c.CreateAcceptSegmentCommandHandler(),
		c.CreateStartSegmentCommandHandler(),
		c.CreateCompleteSegmentCommandHandler(),
		c.CreateFailSegmentCommandHandler(),
		c.CreateInitiateHandoverCommandHandler(),
		c.CreateConfirmHandoverCommandHandler(),
		c.CreateSendChatMessageCommandHandler(),
		c.CreateGetPartialDeliveryQueryHandler(),
		c.CreateGetAvailableSegmentsQueryHandler(),
		c.CreateGetChatHistoryQueryHandler(),
		c.CreateGetHandoverQueryHandler(),
	)
}

// CreateWSHandler assembles the WebSocket handler on top of the hub.
func (c *CompositionRoot) CreateWSHandler() *ws.Handler {
	return ws.NewHandler(
		c.identity,
		c.hub,
		c.CreateAcceptSegmentCommandHandler(),
		c.CreateStartSegmentCommandHandler(),
		c.CreateCompleteSegmentCommandHandler(),
		c.CreateFailSegmentCommandHandler(),
		c.CreateInitiateHandoverCommandHandler(),
		c.CreateConfirmHandoverCommandHandler(),
		c.CreateSendChatMessageCommandHandler(),
		c.CreateGetHandoverQueryHandler(),
		c.logger,
	)
}

// CreateJobManager assembles the background sweeps.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateExpireHandoversCommandHandler(),
		c.CreateFailStaleSegmentsCommandHandler(),
		c.logger,
	)
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

type FuncChatUoWFactory func() commands.ChatUoW

func (f FuncChatUoWFactory) Create() commands.ChatUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
