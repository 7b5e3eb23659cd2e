package trackingrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/elo-tracker/app/events"
	trackinghandlers "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/handlers"
	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// TrackingRouter handles Watermill handler registration for tracking events.
type TrackingRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewTrackingRouter creates a new TrackingRouter.
func NewTrackingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *TrackingRouter {
	return &TrackingRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *TrackingRouter) Configure(_ context.Context, handlers trackinghandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandlers is the dispatch table: one topic, one typed handler.
func (r *TrackingRouter) registerHandlers(handlers trackinghandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, events.TrackRequestedV1, handlers.HandleTrackRequested)
	registerHandler(deps, events.UntrackRequestedV1, handlers.HandleUntrackRequested)
	registerHandler(deps, events.PingRequestedV1, handlers.HandlePingRequested)
	registerHandler(deps, events.PresenceUpdatedV1, handlers.HandlePresenceUpdated)

	r.logger.Info("Tracking module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "tracking." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *TrackingRouter) Close() error {
	return r.router.Close()
}
