package discord

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/elo-tracker/app/events"
	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/trace"
)

// MessageSession is the part of *discordgo.Session the reply sender uses.
type MessageSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ReplySender posts reply events into their channels.
type ReplySender struct {
	session MessageSession
	logger  *slog.Logger
}

// NewReplySender creates a ReplySender.
func NewReplySender(session MessageSession, logger *slog.Logger) *ReplySender {
	return &ReplySender{session: session, logger: logger}
}

// HandleReplyRequested sends one reply. Send failures are logged and dropped.
func (s *ReplySender) HandleReplyRequested(ctx context.Context, payload *events.ReplyRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload.ChannelID == "" || payload.Content == "" {
		return nil, nil
	}

	_, err := s.session.ChannelMessageSendComplex(payload.ChannelID, replyMessage(payload), discordgo.WithContext(ctx))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to send reply",
			slog.String("channel_id", payload.ChannelID),
			slog.String("correlation_id", handlerwrapper.CorrelationID(ctx)),
			slog.Any("error", err),
		)
	}
	return nil, nil
}

// replyMessage builds the outgoing message. Replies echo user input, so no
// mention in them may ping anyone, including the replied-to author.
func replyMessage(payload *events.ReplyRequestedPayloadV1) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{
		Content:         payload.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}
	if payload.ReplyToMessageID != "" {
		msg.Reference = &discordgo.MessageReference{
			MessageID: payload.ReplyToMessageID,
			ChannelID: payload.ChannelID,
		}
	}
	return msg
}

// Register subscribes the sender to reply events on router.
func (s *ReplySender) Register(router *message.Router, subscriber message.Subscriber, publisher message.Publisher, tracer trace.Tracer) {
	handlerName := "discord." + events.ReplyRequestedV1
	router.AddHandler(
		handlerName,
		events.ReplyRequestedV1,
		subscriber,
		"",
		publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, s.logger, tracer, s.HandleReplyRequested),
	)
}
