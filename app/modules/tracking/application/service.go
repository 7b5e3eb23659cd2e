package trackingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	trackingdb "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/repositories"
	"github.com/Black-And-White-Club/elo-tracker/app/observability"
	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Timeouts bounds individual external calls made by the service.
type Timeouts struct {
	Resolver time.Duration
	Store    time.Duration
}

// TrackingService implements the Service interface.
type TrackingService struct {
	repo       trackingdb.Repository
	resolver   Resolver
	reconciler RoleReconciler
	logger     *slog.Logger
	metrics    observability.TrackingMetrics
	tracer     trace.Tracer
	timeouts   Timeouts
	now        func() time.Time
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(
	repo trackingdb.Repository,
	resolver Resolver,
	reconciler RoleReconciler,
	logger *slog.Logger,
	metrics observability.TrackingMetrics,
	tracer trace.Tracer,
	timeouts Timeouts,
) *TrackingService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoOpTrackingMetrics{}
	}
	return &TrackingService{
		repo:       repo,
		resolver:   resolver,
		reconciler: reconciler,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		timeouts:   timeouts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Track resolves handle, persists the association and reconciles roles.
// Resolution failures abort before anything is written. A store or role
// failure after that point leaves earlier effects in place.
func (s *TrackingService) Track(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, handle string) (*TrackResult, error) {
	return withTelemetry(s, ctx, "Track", memberKey(guildID, memberID), func(ctx context.Context) (*TrackResult, error) {
		handle = strings.TrimSpace(handle)
		if handle == "" {
			return nil, trackingdomain.ErrInvalidHandle
		}

		playerID, err := call(ctx, s.timeouts.Resolver, func(ctx context.Context) (trackingdomain.PlayerID, error) {
			return s.resolver.ResolveIdentity(ctx, handle)
		})
		if err != nil {
			return nil, err
		}

		tier, err := call(ctx, s.timeouts.Resolver, func(ctx context.Context) (trackingdomain.Tier, error) {
			return s.resolver.ResolveTier(ctx, playerID)
		})
		if err != nil {
			return nil, err
		}

		if err := s.upsert(ctx, guildID, memberID, playerID, tier); err != nil {
			return nil, err
		}

		if err := s.reconciler.Reconcile(ctx, guildID, memberID, tier); err != nil {
			return nil, err
		}

		return &TrackResult{PlayerID: playerID, Tier: tier}, nil
	})
}

// Untrack deletes the association, then clears the member's tier roles. The
// role clear runs even when the member was not tracked.
func (s *TrackingService) Untrack(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error {
	_, err := withTelemetry(s, ctx, "Untrack", memberKey(guildID, memberID), func(ctx context.Context) (struct{}, error) {
		_, err := call(ctx, s.timeouts.Store, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.repo.Delete(ctx, guildID, memberID)
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("%w: %w", trackingdomain.ErrStore, err)
		}

		return struct{}{}, s.reconciler.Reconcile(ctx, guildID, memberID, trackingdomain.TierUntracked)
	})
	return err
}

// HandlePresence re-resolves a tracked member's tier and reconciles only
// when it changed. Untracked members are ignored.
func (s *TrackingService) HandlePresence(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (PresenceOutcome, error) {
	return withTelemetry(s, ctx, "HandlePresence", memberKey(guildID, memberID), func(ctx context.Context) (PresenceOutcome, error) {
		player, err := call(ctx, s.timeouts.Store, func(ctx context.Context) (*trackingdomain.TrackedPlayer, error) {
			return s.repo.Get(ctx, guildID, memberID)
		})
		if err != nil {
			if errors.Is(err, trackingdb.ErrNotFound) {
				s.metrics.RecordPresenceSkipped("untracked")
				return PresenceUntracked, nil
			}
			return "", fmt.Errorf("%w: %w", trackingdomain.ErrStore, err)
		}

		tier, err := call(ctx, s.timeouts.Resolver, func(ctx context.Context) (trackingdomain.Tier, error) {
			return s.resolver.ResolveTier(ctx, player.PlayerID)
		})
		if err != nil {
			return "", err
		}

		if tier == player.Tier {
			s.metrics.RecordPresenceSkipped("tier_unchanged")
			return PresenceUnchanged, nil
		}

		if err := s.upsert(ctx, guildID, memberID, player.PlayerID, tier); err != nil {
			return "", err
		}

		if err := s.reconciler.Reconcile(ctx, guildID, memberID, tier); err != nil {
			return "", err
		}

		s.logger.InfoContext(ctx, "Tier changed",
			slog.String("guild_id", string(guildID)),
			slog.String("member_id", string(memberID)),
			slog.String("from", player.Tier.String()),
			slog.String("to", tier.String()),
		)
		return PresenceUpdated, nil
	})
}

func (s *TrackingService) upsert(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, playerID trackingdomain.PlayerID, tier trackingdomain.Tier) error {
	_, err := call(ctx, s.timeouts.Store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Upsert(ctx, &trackingdomain.TrackedPlayer{
			GuildID:   guildID,
			MemberID:  memberID,
			PlayerID:  playerID,
			Tier:      tier,
			UpdatedAt: s.now(),
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", trackingdomain.ErrStore, err)
	}
	return nil
}

func memberKey(guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) string {
	return string(guildID) + "/" + string(memberID)
}

// FailureClass names the error class of err for metrics and logs.
func FailureClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, trackingdomain.ErrInvalidHandle):
		return "invalid_handle"
	case errors.Is(err, trackingdomain.ErrAuth):
		return "auth_error"
	case errors.Is(err, trackingdomain.ErrNotFound):
		return "not_found"
	case errors.Is(err, trackingdomain.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, trackingdomain.ErrStore):
		return "store_error"
	case errors.Is(err, trackingdomain.ErrRoleMutation):
		return "role_mutation_error"
	default:
		return "internal"
	}
}

// expected reports failures that are a normal answer to user input.
func expected(err error) bool {
	return errors.Is(err, trackingdomain.ErrNotFound) || errors.Is(err, trackingdomain.ErrInvalidHandle)
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *TrackingService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	correlationID := slog.String("correlation_id", handlerwrapper.CorrelationID(ctx))

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", correlationID, slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				correlationID,
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "panic")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)

	if err != nil {
		class := FailureClass(err)
		s.metrics.RecordOperationFailure(ctx, operationName, class)
		if expected(err) {
			s.logger.WarnContext(ctx, "Operation returned failure result",
				correlationID,
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.String("class", class),
				slog.Any("error", err),
			)
			return result, err
		}
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			correlationID,
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.String("class", class),
			slog.Any("error", wrappedErr),
		)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		correlationID,
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName)

	return result, nil
}

var _ Service = (*TrackingService)(nil)
