package trackingdb

import (
	"context"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
)

// Repository is the persistence contract for tracked players. Every method
// is keyed by (guildID, memberID); no cross-guild queries exist.
//
// Error semantics:
//   - ErrNotFound: Get found no record
//   - other errors: backend failures
type Repository interface {
	// Get returns the tracked player for a guild member.
	Get(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.TrackedPlayer, error)

	// Upsert creates the record or overwrites its player id and tier.
	Upsert(ctx context.Context, player *trackingdomain.TrackedPlayer) error

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error
}
