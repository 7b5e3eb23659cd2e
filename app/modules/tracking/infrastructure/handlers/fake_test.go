package trackinghandlers

import (
	"context"

	trackingservice "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/application"
	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
)

// FakeTrackingService is a programmable stub for trackingservice.Service.
type FakeTrackingService struct {
	trace []string

	TrackFunc          func(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, handle string) (*trackingservice.TrackResult, error)
	UntrackFunc        func(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error
	HandlePresenceFunc func(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (trackingservice.PresenceOutcome, error)
}

func (f *FakeTrackingService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTrackingService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeTrackingService) Track(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, handle string) (*trackingservice.TrackResult, error) {
	f.record("Track")
	if f.TrackFunc != nil {
		return f.TrackFunc(ctx, guildID, memberID, handle)
	}
	return &trackingservice.TrackResult{}, nil
}

func (f *FakeTrackingService) Untrack(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error {
	f.record("Untrack")
	if f.UntrackFunc != nil {
		return f.UntrackFunc(ctx, guildID, memberID)
	}
	return nil
}

func (f *FakeTrackingService) HandlePresence(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (trackingservice.PresenceOutcome, error) {
	f.record("HandlePresence")
	if f.HandlePresenceFunc != nil {
		return f.HandlePresenceFunc(ctx, guildID, memberID)
	}
	return trackingservice.PresenceUntracked, nil
}

var _ trackingservice.Service = (*FakeTrackingService)(nil)
