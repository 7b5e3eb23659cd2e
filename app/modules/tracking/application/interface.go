package trackingservice

import (
	"context"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
)

// Service is the tracking policy behind each chat trigger.
type Service interface {
	// Track binds a member to the player behind handle and assigns the tier role.
	Track(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, handle string) (*TrackResult, error)

	// Untrack forgets the member and removes every tier role it holds.
	Untrack(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error

	// HandlePresence refreshes a tracked member's tier.
	HandlePresence(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (PresenceOutcome, error)
}

// Resolver maps handles to player ids and player ids to tiers.
type Resolver interface {
	ResolveIdentity(ctx context.Context, handle string) (trackingdomain.PlayerID, error)
	ResolveTier(ctx context.Context, playerID trackingdomain.PlayerID) (trackingdomain.Tier, error)
}

// RoleReconciler applies a desired tier to a member's roles.
type RoleReconciler interface {
	Reconcile(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, desired trackingdomain.Tier) error
}

// TrackResult is what a successful Track resolved.
type TrackResult struct {
	PlayerID trackingdomain.PlayerID
	Tier     trackingdomain.Tier
}

// PresenceOutcome says what a presence refresh did.
type PresenceOutcome string

const (
	PresenceUntracked PresenceOutcome = "untracked"
	PresenceUnchanged PresenceOutcome = "unchanged"
	PresenceUpdated   PresenceOutcome = "updated"
)
