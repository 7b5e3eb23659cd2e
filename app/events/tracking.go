// Package events defines the topics and payloads exchanged between the chat
// gateway and the tracking module.
package events

// Topics consumed by the tracking module.
const (
	TrackRequestedV1   = "tracking.track.requested.v1"
	UntrackRequestedV1 = "tracking.untrack.requested.v1"
	PingRequestedV1    = "tracking.ping.requested.v1"
	PresenceUpdatedV1  = "tracking.presence.updated.v1"
)

// CommandContextV1 identifies where a chat command was issued and by whom.
type CommandContextV1 struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MemberID  string `json:"member_id"`
	MessageID string `json:"message_id,omitempty"`
}

// TrackRequestedPayloadV1 is published for "!track <handle>".
type TrackRequestedPayloadV1 struct {
	CommandContextV1
	Handle string `json:"handle"`
}

// UntrackRequestedPayloadV1 is published for "!untrack".
type UntrackRequestedPayloadV1 struct {
	CommandContextV1
}

// PingRequestedPayloadV1 is published for "!ping".
type PingRequestedPayloadV1 struct {
	CommandContextV1
}

// PresenceUpdatedPayloadV1 is published for every guild presence change.
type PresenceUpdatedPayloadV1 struct {
	GuildID  string `json:"guild_id"`
	MemberID string `json:"member_id"`
	Status   string `json:"status,omitempty"`
}
