package events

// ReplyRequestedV1 asks the chat gateway to post a message in a channel.
const ReplyRequestedV1 = "discord.reply.requested.v1"

// ReplyRequestedPayloadV1 is a plain-text reply, optionally threaded onto
// the message that triggered it.
type ReplyRequestedPayloadV1 struct {
	ChannelID        string `json:"channel_id"`
	Content          string `json:"content"`
	ReplyToMessageID string `json:"reply_to_message_id,omitempty"`
}
