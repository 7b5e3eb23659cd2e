package trackingdomain

import "time"

// GuildID identifies a chat community.
type GuildID string

// MemberID identifies a user inside a guild.
type MemberID string

// PlayerID is the stable identifier the ranking platform returns for a handle.
type PlayerID string

// TrackedPlayer is the durable association (guild, member) -> (player, tier).
type TrackedPlayer struct {
	GuildID   GuildID
	MemberID  MemberID
	PlayerID  PlayerID
	Tier      Tier
	UpdatedAt time.Time
}

// Role is a guild role as reported by the chat platform.
type Role struct {
	ID   string
	Name string
}

// Member is the live view of a guild member's held role IDs.
type Member struct {
	GuildID GuildID
	ID      MemberID
	RoleIDs []string
}

// HasRole reports whether the member holds roleID.
func (m *Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
