package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Black-And-White-Club/elo-tracker/app/discord"
	"github.com/Black-And-White-Club/elo-tracker/app/eventbus"
	"github.com/Black-And-White-Club/elo-tracker/app/modules/ranking"
	"github.com/Black-And-White-Club/elo-tracker/app/modules/ranking/infrastructure/riotapi"
	"github.com/Black-And-White-Club/elo-tracker/app/modules/tracking"
	trackingdb "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/repositories"
	"github.com/Black-And-White-Club/elo-tracker/app/observability"
	"github.com/Black-And-White-Club/elo-tracker/config"
	"github.com/Black-And-White-Club/elo-tracker/database"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// App wires the chat gateway, the event bus and the modules together.
type App struct {
	Config         *config.Config
	Observability  *observability.Observability
	EventBus       eventbus.EventBus
	Router         *message.Router
	Session        *discordgo.Session
	Gateway        *discord.Gateway
	RankingModule  *ranking.Module
	TrackingModule *tracking.Module

	db        *bun.DB
	firestore *firestore.Client
}

// NewApp builds every component from cfg. Nothing connects to Discord until Run.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.Init(config.ToObsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}

	repo, err := app.initStore(ctx, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.EventBus, err = eventbus.NewEventBus(ctx, eventbus.Config{
		NATSURL:     cfg.NATS.URL,
		QueueGroup:  cfg.NATS.QueueGroup,
		Subscribers: cfg.NATS.Subscribers,
		AckWait:     cfg.Timeouts.TriggerBudget(),
	}, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	app.Router, err = message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	app.Router.AddMiddleware(middleware.Recoverer, middleware.CorrelationID)

	app.Session, err = discord.NewSession(cfg.Discord.Token)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Gateway = discord.NewGateway(app.EventBus, logger, cfg.Discord.CommandPrefix)
	discord.NewReplySender(app.Session, logger).Register(app.Router, app.EventBus, app.EventBus, obs.Tracer)

	app.RankingModule, err = ranking.NewRankingModule(riotapi.Config{
		BaseURL:       cfg.Riot.BaseURL,
		APIKey:        cfg.Riot.APIKey,
		RatePerSecond: cfg.Riot.RatePerSecond,
		Burst:         cfg.Riot.Burst,
		Timeout:       cfg.Timeouts.Ranking,
	}, logger, obs.Metrics)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.TrackingModule, err = tracking.NewTrackingModule(ctx, tracking.Deps{
		Logger:     logger,
		Tracer:     obs.Tracer,
		Metrics:    obs.Metrics,
		Repo:       repo,
		Resolver:   app.RankingModule.Resolver,
		Roles:      discord.NewRoleClient(app.Session),
		Subscriber: app.EventBus,
		Publisher:  app.EventBus,
	}, app.Router, tracking.Settings{
		CommandPrefix:   cfg.Discord.CommandPrefix,
		ResolverTimeout: cfg.Timeouts.Ranking,
		StoreTimeout:    cfg.Timeouts.Store,
		RoleTimeout:     cfg.Timeouts.Roles,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

func (app *App) initStore(ctx context.Context, logger *slog.Logger) (trackingdb.Repository, error) {
	storeCfg := app.Config.Store

	if storeCfg.Backend == config.BackendFirestore {
		client, err := database.NewFirestoreClient(ctx, storeCfg.FirestoreProjectID, logger)
		if err != nil {
			return nil, err
		}
		app.firestore = client
		return trackingdb.NewFirestoreRepository(client), nil
	}

	db, err := database.OpenBun(ctx, storeCfg.DSN, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if storeCfg.AutoMigrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			return nil, err
		}
	}
	return trackingdb.NewBunRepository(db), nil
}

// Run processes events until ctx is cancelled or a component fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Router.Run(ctx)
	})

	g.Go(func() error {
		app.TrackingModule.Run(ctx, nil)
		return nil
	})

	g.Go(func() error {
		select {
		case <-app.Router.Running():
		case <-ctx.Done():
			return nil
		}

		app.Gateway.Attach(app.Session)
		if err := app.Session.Open(); err != nil {
			return fmt.Errorf("failed to open discord gateway: %w", err)
		}
		logger.InfoContext(ctx, "Discord gateway open")

		<-ctx.Done()
		return app.Session.Close()
	})

	return g.Wait()
}

// Close releases every resource NewApp acquired.
func (app *App) Close() error {
	var errs []error

	if app.TrackingModule != nil {
		errs = append(errs, app.TrackingModule.Close())
	} else if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.firestore != nil {
		errs = append(errs, app.firestore.Close())
	}
	if app.Observability != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, app.Observability.Shutdown(ctx))
		cancel()
	}

	return errors.Join(errs...)
}
