package migrations

import (
	"context"
	"fmt"

	trackingdb "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating tracked_players table...")
			if _, err := db.NewCreateTable().Model((*trackingdb.TrackedPlayer)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create tracked_players table: %w", err)
			}
			fmt.Println("tracked_players table created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping tracked_players table...")
			if _, err := db.NewDropTable().Model((*trackingdb.TrackedPlayer)(nil)).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop tracked_players table: %w", err)
			}
			fmt.Println("tracked_players table dropped successfully!")
			return nil
		},
	)
}
