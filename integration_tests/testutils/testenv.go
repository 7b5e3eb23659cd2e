package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/elo-tracker/app/eventbus"
	"github.com/Black-And-White-Club/elo-tracker/database"
	"github.com/Black-And-White-Club/elo-tracker/integration_tests/containers"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/uptrace/bun"
)

// TestEnvironment holds a migrated Postgres database and a NATS-backed bus.
type TestEnvironment struct {
	Ctx      context.Context
	Logger   *slog.Logger
	DB       *bun.DB
	EventBus eventbus.EventBus
	NATSURL  string
}

// NewTestEnvironment starts Postgres and NATS containers and tears them down
// with t. It skips under -short and when no container runtime is reachable.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = natsContainer.Terminate(context.Background()) })

	db, err := database.OpenBun(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, logger))

	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{NATSURL: natsURL, QueueGroup: "elo-tracker-test"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	return &TestEnvironment{
		Ctx:      ctx,
		Logger:   logger,
		DB:       db,
		EventBus: bus,
		NATSURL:  natsURL,
	}
}

// TruncateTables empties the tracking tables between subtests.
func (env *TestEnvironment) TruncateTables(t *testing.T) {
	t.Helper()
	_, err := env.DB.NewTruncateTable().Table("tracked_players").Cascade().Exec(env.Ctx)
	require.NoError(t, err)
}
