package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/elo-tracker/app/events"
	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Intents requests guild messages with content and guild presences.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildPresences

// NewSession creates a bot session with Intents. It does not connect.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	return session, nil
}

// Gateway turns gateway events into bus messages.
type Gateway struct {
	publisher message.Publisher
	logger    *slog.Logger
	prefix    string
}

// NewGateway creates a Gateway publishing on publisher.
func NewGateway(publisher message.Publisher, logger *slog.Logger, prefix string) *Gateway {
	return &Gateway{publisher: publisher, logger: logger, prefix: prefix}
}

// Attach registers the gateway's event handlers on session.
func (g *Gateway) Attach(session *discordgo.Session) {
	session.AddHandler(g.onReady)
	session.AddHandler(g.onMessageCreate)
	session.AddHandler(g.onPresenceUpdate)
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	g.logger.Info("Connected to Discord",
		slog.String("user", r.User.Username),
		slog.Int("guilds", len(r.Guilds)),
	)
}

func (g *Gateway) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	topic, payload, ok := g.messageEvent(m)
	if !ok {
		return
	}
	g.publish(topic, payload, slog.String("member_id", m.Author.ID))
}

func (g *Gateway) onPresenceUpdate(_ *discordgo.Session, p *discordgo.PresenceUpdate) {
	topic, payload, ok := presenceEvent(p)
	if !ok {
		return
	}
	g.publish(topic, payload, slog.String("member_id", p.User.ID))
}

// messageEvent maps a guild message to a command event. Bots, direct
// messages and non-commands are ignored.
func (g *Gateway) messageEvent(m *discordgo.MessageCreate) (string, any, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return "", nil, false
	}

	cmd, ok := ParseCommand(m.Content, g.prefix)
	if !ok {
		return "", nil, false
	}

	cc := events.CommandContextV1{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MemberID:  m.Author.ID,
		MessageID: m.ID,
	}

	switch cmd.Name {
	case CommandPing:
		return events.PingRequestedV1, &events.PingRequestedPayloadV1{CommandContextV1: cc}, true
	case CommandTrack:
		return events.TrackRequestedV1, &events.TrackRequestedPayloadV1{CommandContextV1: cc, Handle: cmd.Args}, true
	case CommandUntrack:
		return events.UntrackRequestedV1, &events.UntrackRequestedPayloadV1{CommandContextV1: cc}, true
	}
	return "", nil, false
}

func presenceEvent(p *discordgo.PresenceUpdate) (string, any, bool) {
	if p == nil || p.User == nil || p.User.ID == "" || p.User.Bot || p.GuildID == "" {
		return "", nil, false
	}
	return events.PresenceUpdatedV1, &events.PresenceUpdatedPayloadV1{
		GuildID:  p.GuildID,
		MemberID: p.User.ID,
		Status:   string(p.Status),
	}, true
}

func (g *Gateway) publish(topic string, payload any, attrs ...any) {
	msg, err := handlerwrapper.NewMessage(topic, payload)
	if err != nil {
		g.logger.Error("Failed to encode gateway event", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	correlationID := uuid.NewString()
	middleware.SetCorrelationID(correlationID, msg)
	msg.SetContext(handlerwrapper.WithCorrelationID(context.Background(), correlationID))

	if err := g.publisher.Publish(topic, msg); err != nil {
		g.logger.Error("Failed to publish gateway event",
			append(attrs, slog.String("topic", topic), slog.Any("error", err))...,
		)
		return
	}
	g.logger.Debug("Published gateway event",
		append(attrs, slog.String("topic", topic), slog.String("correlation_id", correlationID))...,
	)
}
