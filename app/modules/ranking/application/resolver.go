package rankingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/elo-tracker/app/modules/ranking/infrastructure/riotapi"
	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"github.com/Black-And-White-Club/elo-tracker/app/observability"
)

// TrackedQueue is the only queue whose standing maps to a role.
const TrackedQueue = "RANKED_SOLO_5x5"

// RankingAPI is the subset of the ranking platform the resolver consumes.
type RankingAPI interface {
	GetSummonerByName(ctx context.Context, handle string) (*riotapi.Summoner, error)
	GetLeagueEntries(ctx context.Context, summonerID string) ([]riotapi.LeagueEntry, error)
}

// Resolver turns handles into player ids and player ids into tiers. It keeps
// no state and never retries.
type Resolver struct {
	api     RankingAPI
	logger  *slog.Logger
	metrics observability.ResolverMetrics
}

// NewResolver creates a Resolver.
func NewResolver(api RankingAPI, logger *slog.Logger, metrics observability.ResolverMetrics) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoOpResolverMetrics{}
	}
	return &Resolver{api: api, logger: logger, metrics: metrics}
}

// ResolveIdentity returns the stable player id for a display handle.
func (r *Resolver) ResolveIdentity(ctx context.Context, handle string) (trackingdomain.PlayerID, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", trackingdomain.ErrInvalidHandle
	}

	summoner, err := r.api.GetSummonerByName(ctx, handle)
	r.metrics.RecordResolverCall("identity", outcome(err))
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to resolve player identity",
			slog.String("handle", handle),
			slog.Any("error", err),
		)
		return "", err
	}
	return trackingdomain.PlayerID(summoner.ID), nil
}

// ResolveTier returns the player's current tier in TrackedQueue, or
// TierUnranked when there is no standing in that queue.
func (r *Resolver) ResolveTier(ctx context.Context, playerID trackingdomain.PlayerID) (trackingdomain.Tier, error) {
	entries, err := r.api.GetLeagueEntries(ctx, string(playerID))
	if err != nil {
		if errors.Is(err, trackingdomain.ErrNotFound) && !errors.Is(err, trackingdomain.ErrPlayerNotFound) {
			err = fmt.Errorf("player id %q: %w", playerID, trackingdomain.ErrPlayerNotFound)
		}
		r.metrics.RecordResolverCall("tier", outcome(err))
		r.logger.WarnContext(ctx, "Failed to resolve player tier",
			slog.String("player_id", string(playerID)),
			slog.Any("error", err),
		)
		return trackingdomain.TierUntracked, err
	}

	tier, err := SelectTier(entries, TrackedQueue)
	r.metrics.RecordResolverCall("tier", outcome(err))
	if err != nil {
		return trackingdomain.TierUntracked, err
	}
	return tier, nil
}

// SelectTier picks the first entry whose queue type equals queue exactly.
// No matching entry yields TierUnranked.
func SelectTier(entries []riotapi.LeagueEntry, queue string) (trackingdomain.Tier, error) {
	for _, e := range entries {
		if e.QueueType != queue {
			continue
		}
		tier, err := trackingdomain.ParseTier(e.Tier)
		if err != nil {
			return trackingdomain.TierUntracked, fmt.Errorf("%w: %v", trackingdomain.ErrUpstream, err)
		}
		return tier, nil
	}
	return trackingdomain.TierUnranked, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, trackingdomain.ErrNotFound):
		return "not_found"
	case errors.Is(err, trackingdomain.ErrAuth):
		return "auth_error"
	case errors.Is(err, trackingdomain.ErrInvalidHandle):
		return "invalid"
	default:
		return "upstream_error"
	}
}
