package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/Black-And-White-Club/elo-tracker/app/events"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplySender(t *testing.T) {
	tests := []struct {
		name      string
		payload   *events.ReplyRequestedPayloadV1
		sendErr   error
		wantRef   *discordgo.MessageReference
		wantTrace []string
	}{
		{
			name:      "threaded reply",
			payload:   &events.ReplyRequestedPayloadV1{ChannelID: "c1", Content: "Pong!", ReplyToMessageID: "m1"},
			wantRef:   &discordgo.MessageReference{MessageID: "m1", ChannelID: "c1"},
			wantTrace: []string{"ChannelMessageSendComplex"},
		},
		{
			name:      "plain message",
			payload:   &events.ReplyRequestedPayloadV1{ChannelID: "c1", Content: "Pong!"},
			wantTrace: []string{"ChannelMessageSendComplex"},
		},
		{
			name:      "send failure is swallowed",
			payload:   &events.ReplyRequestedPayloadV1{ChannelID: "c1", Content: "Pong!"},
			sendErr:   errors.New("missing access"),
			wantTrace: []string{"ChannelMessageSendComplex"},
		},
		{
			name:      "empty content is skipped",
			payload:   &events.ReplyRequestedPayloadV1{ChannelID: "c1"},
			wantTrace: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &FakeSession{
				ChannelMessageSendFunc: func(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
					assert.Equal(t, "c1", channelID)
					assert.Equal(t, "Pong!", data.Content)
					assert.Equal(t, tt.wantRef, data.Reference)
					return &discordgo.Message{}, tt.sendErr
				},
			}

			results, err := NewReplySender(session, discardLogger()).HandleReplyRequested(context.Background(), tt.payload)
			assert.NoError(t, err)
			assert.Empty(t, results)
			assert.Equal(t, tt.wantTrace, session.trace)
		})
	}
}

func TestReplySender_NeverPings(t *testing.T) {
	for _, content := range []string{
		"Could not find a player named **@everyone**.",
		"Could not find a player named **<@&123456789012345678>**.",
		"Now tracking **<@42>**: GOLD.",
	} {
		t.Run(content, func(t *testing.T) {
			var sent *discordgo.MessageSend
			session := &FakeSession{
				ChannelMessageSendFunc: func(_ string, data *discordgo.MessageSend) (*discordgo.Message, error) {
					sent = data
					return &discordgo.Message{}, nil
				},
			}

			_, err := NewReplySender(session, discardLogger()).HandleReplyRequested(context.Background(),
				&events.ReplyRequestedPayloadV1{ChannelID: "c1", Content: content, ReplyToMessageID: "m1"})
			require.NoError(t, err)

			require.NotNil(t, sent)
			require.NotNil(t, sent.AllowedMentions)
			assert.Empty(t, sent.AllowedMentions.Parse)
			assert.Empty(t, sent.AllowedMentions.Roles)
			assert.Empty(t, sent.AllowedMentions.Users)
			assert.False(t, sent.AllowedMentions.RepliedUser)
		})
	}
}
