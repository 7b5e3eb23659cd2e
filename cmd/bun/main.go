package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/elo-tracker/config"
	"github.com/Black-And-White-Club/elo-tracker/database"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name: "bun",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			newDBCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withMigrator opens the configured SQL store and hands its migrator to fn.
// Only the store settings are needed, so the rest of the config is not validated.
func withMigrator(c *cli.Context, fn func(ctx context.Context, migrator *migrate.Migrator) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Backend == config.BackendFirestore {
		return fmt.Errorf("the firestore store has no migrations")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	db, err := database.OpenBun(c.Context, cfg.Store.DSN, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(c.Context, database.Migrator(db))
}

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(ctx context.Context, migrator *migrate.Migrator) error {
						return migrator.Init(ctx)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(ctx context.Context, migrator *migrate.Migrator) error {
						if err := migrator.Lock(ctx); err != nil {
							return err
						}
						defer migrator.Unlock(ctx) //nolint:errcheck

						group, err := migrator.Migrate(ctx)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No new migrations to run")
							return nil
						}
						fmt.Printf("Migrated to %s\n", group)
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(ctx context.Context, migrator *migrate.Migrator) error {
						if err := migrator.Lock(ctx); err != nil {
							return err
						}
						defer migrator.Unlock(ctx) //nolint:errcheck

						group, err := migrator.Rollback(ctx)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No groups to roll back")
							return nil
						}
						fmt.Printf("Rolled back %s\n", group)
						return nil
					})
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(ctx context.Context, migrator *migrate.Migrator) error {
						name := strings.Join(c.Args().Slice(), "_")
						mf, err := migrator.CreateGoMigration(ctx, name)
						if err != nil {
							return err
						}
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(ctx context.Context, migrator *migrate.Migrator) error {
						ms, err := migrator.MigrationsWithStatus(ctx)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations: %s\n", ms)
						fmt.Printf("Unapplied: %s\n", ms.Unapplied())
						fmt.Printf("Last group: %s\n", ms.LastGroup())
						return nil
					})
				},
			},
		},
	}
}
