package trackingdb

import (
	"time"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"github.com/uptrace/bun"
)

// TrackedPlayer is the relational row for one tracked guild member.
type TrackedPlayer struct {
	bun.BaseModel `bun:"table:tracked_players,alias:tp"`

	GuildID   string    `bun:"guild_id,pk,notnull,type:varchar(20)"`
	MemberID  string    `bun:"member_id,pk,notnull,type:varchar(20)"`
	PlayerID  string    `bun:"player_id,notnull,type:varchar(128)"`
	Tier      string    `bun:"tier,notnull,type:varchar(16)"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// trackedPlayerDoc is the Firestore document stored at
// guilds/{guild_id}/members/{member_id}.
type trackedPlayerDoc struct {
	PlayerID  string    `firestore:"player_id"`
	Tier      string    `firestore:"tier"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toDomain(row *TrackedPlayer) *trackingdomain.TrackedPlayer {
	return &trackingdomain.TrackedPlayer{
		GuildID:   trackingdomain.GuildID(row.GuildID),
		MemberID:  trackingdomain.MemberID(row.MemberID),
		PlayerID:  trackingdomain.PlayerID(row.PlayerID),
		Tier:      trackingdomain.Tier(row.Tier),
		UpdatedAt: row.UpdatedAt,
	}
}

func toRow(p *trackingdomain.TrackedPlayer) *TrackedPlayer {
	return &TrackedPlayer{
		GuildID:   string(p.GuildID),
		MemberID:  string(p.MemberID),
		PlayerID:  string(p.PlayerID),
		Tier:      string(p.Tier),
		UpdatedAt: p.UpdatedAt,
	}
}
