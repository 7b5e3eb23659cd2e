package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	trackingservice "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/application"
	trackinghandlers "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/handlers"
	trackingdb "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/repositories"
	trackingrouter "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/router"
	"github.com/Black-And-White-Club/elo-tracker/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// Deps are the collaborators the tracking module does not own.
type Deps struct {
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Metrics    observability.TrackingMetrics
	Repo       trackingdb.Repository
	Resolver   trackingservice.Resolver
	Roles      trackingservice.RoleClient
	Subscriber message.Subscriber
	Publisher  message.Publisher
}

// Settings are the tracking module's tunables.
type Settings struct {
	CommandPrefix   string
	ResolverTimeout time.Duration
	StoreTimeout    time.Duration
	RoleTimeout     time.Duration
}

// Module represents the tracking module.
type Module struct {
	TrackingService trackingservice.Service
	TrackingRouter  *trackingrouter.TrackingRouter
	logger          *slog.Logger
	cancelFunc      context.CancelFunc
}

// NewTrackingModule creates and initializes a new tracking module.
func NewTrackingModule(ctx context.Context, deps Deps, router *message.Router, settings Settings) (*Module, error) {
	logger := deps.Logger
	logger.InfoContext(ctx, "tracking.NewTrackingModule initializing")

	// 1. Reconciler over the chat platform's role API
	reconciler := trackingservice.NewReconciler(deps.Roles, logger, deps.Metrics, settings.RoleTimeout)

	// 2. Service
	service := trackingservice.NewTrackingService(
		deps.Repo,
		deps.Resolver,
		reconciler,
		logger,
		deps.Metrics,
		deps.Tracer,
		trackingservice.Timeouts{Resolver: settings.ResolverTimeout, Store: settings.StoreTimeout},
	)

	// 3. Handlers
	handlers := trackinghandlers.NewTrackingHandlers(service, logger, deps.Tracer, settings.CommandPrefix)

	// 4. Router
	trackingRouter := trackingrouter.NewTrackingRouter(logger, router, deps.Subscriber, deps.Publisher, deps.Tracer)
	if err := trackingRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure tracking router: %w", err)
	}

	return &Module{
		TrackingService: service,
		TrackingRouter:  trackingRouter,
		logger:          logger,
	}, nil
}

// Run blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting tracking module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Tracking module goroutine stopped")
}

// Close shuts down the tracking module.
func (m *Module) Close() error {
	m.logger.Info("Stopping tracking module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.TrackingRouter != nil {
		if err := m.TrackingRouter.Close(); err != nil {
			m.logger.Error("Error closing TrackingRouter from module", "error", err)
			return fmt.Errorf("error closing TrackingRouter: %w", err)
		}
	}

	m.logger.Info("Tracking module stopped")
	return nil
}
