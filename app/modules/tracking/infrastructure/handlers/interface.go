package trackinghandlers

import (
	"context"

	"github.com/Black-And-White-Club/elo-tracker/app/events"
	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
)

// Handlers defines the interface for tracking event handlers.
type Handlers interface {
	// HandleTrackRequested handles "!track <handle>".
	HandleTrackRequested(ctx context.Context, payload *events.TrackRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleUntrackRequested handles "!untrack".
	HandleUntrackRequested(ctx context.Context, payload *events.UntrackRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandlePingRequested handles "!ping".
	HandlePingRequested(ctx context.Context, payload *events.PingRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandlePresenceUpdated refreshes the tier of a tracked member.
	HandlePresenceUpdated(ctx context.Context, payload *events.PresenceUpdatedPayloadV1) ([]handlerwrapper.Result, error)
}
