package ranking

import (
	"fmt"
	"log/slog"

	rankingservice "github.com/Black-And-White-Club/elo-tracker/app/modules/ranking/application"
	"github.com/Black-And-White-Club/elo-tracker/app/modules/ranking/infrastructure/riotapi"
	"github.com/Black-And-White-Club/elo-tracker/app/observability"
)

// Module exposes the rank resolver. It has no handlers of its own.
type Module struct {
	Resolver *rankingservice.Resolver
}

// NewRankingModule builds the Riot client and the resolver on top of it.
func NewRankingModule(cfg riotapi.Config, logger *slog.Logger, metrics observability.ResolverMetrics) (*Module, error) {
	client, err := riotapi.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ranking api client: %w", err)
	}
	return &Module{Resolver: rankingservice.NewResolver(client, logger, metrics)}, nil
}
