// Package http is the REST surface of the coordination engine. Dispatcher
// facing operations (creating, activating and cancelling chains) and read
// models live here; couriers normally drive segments over the WebSocket
// channel but every command is reachable over REST as well.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/application/usecases/queries"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
)

// Server wires the REST routes to the command and query handlers.
type Server struct {
	identity ports.IdentityResolver

	createHandler           commands.CreatePartialDeliveryCommandHandler
	activateHandler         commands.ActivatePartialDeliveryCommandHandler
	cancelHandler           commands.CancelPartialDeliveryCommandHandler
	acceptSegmentHandler    commands.AcceptSegmentCommandHandler
	startSegmentHandler     commands.StartSegmentCommandHandler
	completeSegmentHandler  commands.CompleteSegmentCommandHandler
	failSegmentHandler      commands.FailSegmentCommandHandler
	initiateHandoverHandler commands.InitiateHandoverCommandHandler
	confirmHandoverHandler  commands.ConfirmHandoverCommandHandler
	sendChatMessageHandler  commands.SendChatMessageCommandHandler

	getPartialDeliveryHandler   queries.GetPartialDeliveryQueryHandler
	getAvailableSegmentsHandler queries.GetAvailableSegmentsQueryHandler
	getChatHistoryHandler       queries.GetChatHistoryQueryHandler
	getHandoverHandler          queries.GetHandoverQueryHandler
}

// NewServer creates the REST server.
func NewServer(
	identity ports.IdentityResolver,
	createHandler commands.CreatePartialDeliveryCommandHandler,
	activateHandler commands.ActivatePartialDeliveryCommandHandler,
	cancelHandler commands.CancelPartialDeliveryCommandHandler,
	acceptSegmentHandler commands.AcceptSegmentCommandHandler,
	startSegmentHandler commands.StartSegmentCommandHandler,
	completeSegmentHandler commands.CompleteSegmentCommandHandler,
	failSegmentHandler commands.FailSegmentCommandHandler,
	initiateHandoverHandler commands.InitiateHandoverCommandHandler,
	confirmHandoverHandler commands.ConfirmHandoverCommandHandler,
	sendChatMessageHandler commands.SendChatMessageCommandHandler,
	getPartialDeliveryHandler queries.GetPartialDeliveryQueryHandler,
	getAvailableSegmentsHandler queries.GetAvailableSegmentsQueryHandler,
	getChatHistoryHandler queries.GetChatHistoryQueryHandler,
	getHandoverHandler queries.GetHandoverQueryHandler,
) *Server {
	return &Server{
		identity:                    identity,
		createHandler:               createHandler,
		activateHandler:             activateHandler,
		cancelHandler:               cancelHandler,
		acceptSegmentHandler:        acceptSegmentHandler,
		startSegmentHandler:         startSegmentHandler,
		completeSegmentHandler:      completeSegmentHandler,
		failSegmentHandler:          failSegmentHandler,
		initiateHandoverHandler:     initiateHandoverHandler,
		confirmHandoverHandler:      confirmHandoverHandler,
		sendChatMessageHandler:      sendChatMessageHandler,
		getPartialDeliveryHandler:   getPartialDeliveryHandler,
		getAvailableSegmentsHandler: getAvailableSegmentsHandler,
		getChatHistoryHandler:       getChatHistoryHandler,
		getHandoverHandler:          getHandoverHandler,
	}
}

// RegisterRoutes mounts every route under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.POST("/partial-deliveries", s.CreatePartialDelivery)
	v1.POST("/partial-deliveries/:id/activate", s.ActivatePartialDelivery)
	v1.POST("/partial-deliveries/:id/cancel", s.CancelPartialDelivery)
	v1.GET("/partial-deliveries/:id", s.GetPartialDelivery)
	v1.GET("/partial-deliveries/:id/chat", s.GetChatHistory)
	v1.POST("/partial-deliveries/:id/chat", s.SendChatMessage)

	v1.GET("/segments/available", s.GetAvailableSegments)
	v1.POST("/segments/:id/accept", s.AcceptSegment)
	v1.POST("/segments/:id/start", s.StartSegment)
	v1.POST("/segments/:id/complete", s.CompleteSegment)
	v1.POST("/segments/:id/fail", s.FailSegment)

	v1.POST("/handovers", s.InitiateHandover)
	v1.POST("/handovers/:id/confirm", s.ConfirmHandover)
	v1.GET("/handovers/:id", s.GetHandover)
}

// participant resolves the bearer token of the request.
func (s *Server) participant(ctx echo.Context) (ports.Participant, error) {
	const prefix = "Bearer "

	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, prefix) || header == prefix {
		return ports.Participant{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	token := strings.TrimPrefix(header, prefix)

	p, err := s.identity.Resolve(ctx.Request().Context(), token)
	if err != nil {
		return ports.Participant{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid bearer token")
	}
	return p, nil
}

// courier resolves the bearer token and requires the courier role.
func (s *Server) courier(ctx echo.Context) (ports.Participant, error) {
	p, err := s.participant(ctx)
	if err != nil {
		return ports.Participant{}, err
	}
	if p.Role != ports.RoleCourier {
		return ports.Participant{}, echo.NewHTTPError(http.StatusForbidden, "courier role required")
	}
	return p, nil
}

// CreatePartialDelivery handles POST /api/v1/partial-deliveries.
func (s *Server) CreatePartialDelivery(ctx echo.Context) error {
	var request createPartialDeliveryRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	originalJobID, err := kernel.UUIDFromString(request.OriginalJobID)
	if err != nil {
		return badRequest(ctx, "invalid original_job_id")
	}

	relayPoints := make([]kernel.GeoPoint, 0, len(request.RelayPoints))
	for _, point := range request.RelayPoints {
		relayPoint, pointErr := kernel.NewGeoPoint(point.Latitude, point.Longitude, point.Label)
		if pointErr != nil {
			return badRequest(ctx, "invalid relay point: "+pointErr.Error())
		}
		relayPoints = append(relayPoints, relayPoint)
	}

	partialDeliveryID := kernel.NewUUID()
	cmd, err := commands.NewCreatePartialDeliveryCommand(partialDeliveryID, originalJobID, relayPoints)
	if err != nil {
		return fail(ctx, err)
	}
	if err := s.createHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, createPartialDeliveryResponse{
		PartialDeliveryID: partialDeliveryID.String(),
	})
}

// ActivatePartialDelivery handles POST /api/v1/partial-deliveries/:id/activate.
func (s *Server) ActivatePartialDelivery(ctx echo.Context) error {
	partialDeliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid partial delivery id")
	}

	cmd, err := commands.NewActivatePartialDeliveryCommand(partialDeliveryID)
	if err != nil {
		return fail(ctx, err)
	}
	if err := s.activateHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CancelPartialDelivery handles POST /api/v1/partial-deliveries/:id/cancel.
func (s *Server) CancelPartialDelivery(ctx echo.Context) error {
	partialDeliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid partial delivery id")
	}

	var request cancelPartialDeliveryRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewCancelPartialDeliveryCommand(partialDeliveryID, request.Reason)
	if err != nil {
		return fail(ctx, err)
	}
	if err := s.cancelHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetPartialDelivery handles GET /api/v1/partial-deliveries/:id.
func (s *Server) GetPartialDelivery(ctx echo.Context) error {
	partialDeliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid partial delivery id")
	}

	query, err := queries.NewGetPartialDeliveryQuery(partialDeliveryID)
	if err != nil {
		return fail(ctx, err)
	}
	response, err := s.getPartialDeliveryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toPartialDeliveryResponse(response))
}

// GetAvailableSegments handles GET /api/v1/segments/available.
func (s *Server) GetAvailableSegments(ctx echo.Context) error {
	segments, err := s.getAvailableSegmentsHandler.Handle(
		ctx.Request().Context(), queries.NewGetAvailableSegmentsQuery())
	if err != nil {
		return fail(ctx, err)
	}

	response := make([]availableSegmentResponse, len(segments))
	for i, segment := range segments {
		response[i] = toAvailableSegmentResponse(segment)
	}
	return ctx.JSON(http.StatusOK, response)
}

// segmentCommand factors the shared shape of the four segment transitions.
func (s *Server) segmentCommand(ctx echo.Context, handle func(segmentID, courierID kernel.UUID) error) error {
	courier, err := s.courier(ctx)
	if err != nil {
		return err
	}

	segmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid segment id")
	}

	if err := handle(segmentID, courier.ID); err != nil {
		return fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// AcceptSegment handles POST /api/v1/segments/:id/accept.
func (s *Server) AcceptSegment(ctx echo.Context) error {
	return s.segmentCommand(ctx, func(segmentID, courierID kernel.UUID) error {
		cmd, err := commands.NewAcceptSegmentCommand(segmentID, courierID)
		if err != nil {
			return err
		}
		return s.acceptSegmentHandler.Handle(ctx.Request().Context(), cmd)
	})
}

// StartSegment handles POST /api/v1/segments/:id/start.
func (s *Server) StartSegment(ctx echo.Context) error {
	return s.segmentCommand(ctx, func(segmentID, courierID kernel.UUID) error {
		cmd, err := commands.NewStartSegmentCommand(segmentID, courierID)
		if err != nil {
			return err
		}
		return s.startSegmentHandler.Handle(ctx.Request().Context(), cmd)
	})
}

// CompleteSegment handles POST /api/v1/segments/:id/complete.
func (s *Server) CompleteSegment(ctx echo.Context) error {
	return s.segmentCommand(ctx, func(segmentID, courierID kernel.UUID) error {
		cmd, err := commands.NewCompleteSegmentCommand(segmentID, courierID)
		if err != nil {
			return err
		}
		return s.completeSegmentHandler.Handle(ctx.Request().Context(), cmd)
	})
}

// FailSegment handles POST /api/v1/segments/:id/fail.
func (s *Server) FailSegment(ctx echo.Context) error {
	return s.segmentCommand(ctx, func(segmentID, courierID kernel.UUID) error {
		cmd, err := commands.NewFailSegmentCommand(segmentID, courierID)
		if err != nil {
			return err
		}
		return s.failSegmentHandler.Handle(ctx.Request().Context(), cmd)
	})
}

// InitiateHandover handles POST /api/v1/handovers. The verification code is
// returned to the initiating courier only.
func (s *Server) InitiateHandover(ctx echo.Context) error {
	courier, err := s.courier(ctx)
	if err != nil {
		return err
	}

	var request initiateHandoverRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	fromSegmentID, err := kernel.UUIDFromString(request.FromSegmentID)
	if err != nil {
		return badRequest(ctx, "invalid from_segment_id")
	}
	location, err := kernel.NewGeoPoint(request.Latitude, request.Longitude, request.Label)
	if err != nil {
		return badRequest(ctx, "invalid meeting point: "+err.Error())
	}
	estimatedTime := request.EstimatedTime
	if estimatedTime.IsZero() {
		estimatedTime = time.Now().UTC()
	}

	handoverID := kernel.NewUUID()
	cmd, err := commands.NewInitiateHandoverCommand(handoverID, fromSegmentID, courier.ID, location, estimatedTime)
	if err != nil {
		return fail(ctx, err)
	}
	if err := s.initiateHandoverHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	query, err := queries.NewGetHandoverQuery(handoverID, courier.ID)
	if err != nil {
		return fail(ctx, err)
	}
	handover, err := s.getHandoverHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, initiateHandoverResponse{
		HandoverID:       handoverID.String(),
		VerificationCode: handover.VerificationCode,
	})
}

// ConfirmHandover handles POST /api/v1/handovers/:id/confirm.
func (s *Server) ConfirmHandover(ctx echo.Context) error {
	courier, err := s.courier(ctx)
	if err != nil {
		return err
	}

	handoverID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid handover id")
	}

	var request confirmHandoverRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewConfirmHandoverCommand(handoverID, courier.ID, request.VerificationCode)
	if err != nil {
		return fail(ctx, err)
	}
	if err := s.confirmHandoverHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetHandover handles GET /api/v1/handovers/:id. The response redacts the
// verification code unless the requester owns the outgoing segment.
func (s *Server) GetHandover(ctx echo.Context) error {
	requester, err := s.participant(ctx)
	if err != nil {
		return err
	}

	handoverID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid handover id")
	}

	query, err := queries.NewGetHandoverQuery(handoverID, requester.ID)
	if err != nil {
		return fail(ctx, err)
	}
	response, err := s.getHandoverHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toHandoverResponse(response))
}

// SendChatMessage handles POST /api/v1/partial-deliveries/:id/chat.
func (s *Server) SendChatMessage(ctx echo.Context) error {
	sender, err := s.participant(ctx)
	if err != nil {
		return err
	}

	partialDeliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid partial delivery id")
	}

	var request sendChatMessageRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	messageID := kernel.NewUUID()
	cmd, err := commands.NewSendChatMessageCommand(messageID, partialDeliveryID, sender.ID, request.Content)
	if err != nil {
		return fail(ctx, err)
	}
	if err := s.sendChatMessageHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, sendChatMessageResponse{MessageID: messageID.String()})
}

// GetChatHistory handles GET /api/v1/partial-deliveries/:id/chat.
func (s *Server) GetChatHistory(ctx echo.Context) error {
	partialDeliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid partial delivery id")
	}

	query, err := queries.NewGetChatHistoryQuery(partialDeliveryID)
	if err != nil {
		return fail(ctx, err)
	}
	messages, err := s.getChatHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}

	response := make([]chatMessageResponse, len(messages))
	for i, message := range messages {
		response[i] = toChatMessageResponse(message)
	}
	return ctx.JSON(http.StatusOK, response)
}
