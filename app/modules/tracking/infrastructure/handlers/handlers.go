package trackinghandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/elo-tracker/app/events"
	trackingservice "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/application"
	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// TrackingHandlers implements the Handlers interface. Service failures are
// answered in the originating channel (commands) or logged (presence) and
// never returned, so a trigger is processed at most once.
type TrackingHandlers struct {
	service trackingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	prefix  string
}

// NewTrackingHandlers creates a new TrackingHandlers instance. prefix is the
// command prefix shown in usage replies.
func NewTrackingHandlers(
	service trackingservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	prefix string,
) Handlers {
	return &TrackingHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		prefix:  prefix,
	}
}

func (h *TrackingHandlers) HandleTrackRequested(ctx context.Context, payload *events.TrackRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TrackingHandlers.HandleTrackRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Track requested",
		slog.String("guild_id", payload.GuildID),
		slog.String("member_id", payload.MemberID),
		slog.String("handle", payload.Handle),
	)

	result, err := h.service.Track(ctx,
		trackingdomain.GuildID(payload.GuildID),
		trackingdomain.MemberID(payload.MemberID),
		payload.Handle,
	)
	if err != nil {
		return h.reply(payload.CommandContextV1, h.trackFailureText(payload.Handle, err)), nil
	}

	return h.reply(payload.CommandContextV1,
		fmt.Sprintf("Now tracking **%s**: %s.", escapeMarkdown(payload.Handle), displayTier(result.Tier)),
	), nil
}

func (h *TrackingHandlers) HandleUntrackRequested(ctx context.Context, payload *events.UntrackRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TrackingHandlers.HandleUntrackRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Untrack requested",
		slog.String("guild_id", payload.GuildID),
		slog.String("member_id", payload.MemberID),
	)

	err := h.service.Untrack(ctx,
		trackingdomain.GuildID(payload.GuildID),
		trackingdomain.MemberID(payload.MemberID),
	)
	if err != nil {
		return h.reply(payload.CommandContextV1, failureText(err)), nil
	}
	return h.reply(payload.CommandContextV1, "You are no longer tracked."), nil
}

func (h *TrackingHandlers) HandlePingRequested(ctx context.Context, payload *events.PingRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.reply(payload.CommandContextV1, "Pong!"), nil
}

func (h *TrackingHandlers) HandlePresenceUpdated(ctx context.Context, payload *events.PresenceUpdatedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TrackingHandlers.HandlePresenceUpdated")
	defer span.End()

	outcome, err := h.service.HandlePresence(ctx,
		trackingdomain.GuildID(payload.GuildID),
		trackingdomain.MemberID(payload.MemberID),
	)
	if err != nil {
		h.logger.WarnContext(ctx, "Presence refresh failed",
			slog.String("guild_id", payload.GuildID),
			slog.String("member_id", payload.MemberID),
			slog.String("class", trackingservice.FailureClass(err)),
			slog.Any("error", err),
		)
		return nil, nil
	}

	h.logger.DebugContext(ctx, "Presence refresh done",
		slog.String("member_id", payload.MemberID),
		slog.String("outcome", string(outcome)),
	)
	return nil, nil
}

func (h *TrackingHandlers) reply(cmd events.CommandContextV1, content string) []handlerwrapper.Result {
	return []handlerwrapper.Result{{
		Topic: events.ReplyRequestedV1,
		Payload: &events.ReplyRequestedPayloadV1{
			ChannelID:        cmd.ChannelID,
			Content:          content,
			ReplyToMessageID: cmd.MessageID,
		},
	}}
}

func (h *TrackingHandlers) trackFailureText(handle string, err error) string {
	switch {
	case errors.Is(err, trackingdomain.ErrInvalidHandle):
		return fmt.Sprintf("Usage: `%strack <summoner name>`", h.prefix)
	case errors.Is(err, trackingdomain.ErrPlayerNotFound):
		return fmt.Sprintf("Could not find a player named **%s**.", escapeMarkdown(handle))
	default:
		return failureText(err)
	}
}

// failureText picks the user-facing message for an error class.
func failureText(err error) string {
	switch {
	case errors.Is(err, trackingdomain.ErrAuth):
		return "The bot's credentials were rejected. Ask an admin to check its configuration."
	case errors.Is(err, trackingdomain.ErrUpstream):
		return "The ranking service is unavailable right now. Try again later."
	case errors.Is(err, trackingdomain.ErrStore):
		return "Could not save your tracking right now. Try again later."
	case errors.Is(err, trackingdomain.ErrRoleMutation):
		return "Could not update your roles. Check that the bot can manage roles."
	default:
		return "Something went wrong. Try again later."
	}
}

func displayTier(t trackingdomain.Tier) string {
	if t == trackingdomain.TierUnranked {
		return "unranked in solo queue"
	}
	return t.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"|", `\|`,
	">", `\>`,
	"<", `\<`,
	"@", "@\u200b",
)

// escapeMarkdown renders user text literally inside a chat message. Mentions
// are broken with a zero-width space after "@".
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
