package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/recharge-backend/internal/app"
	"github.com/yungbote/recharge-backend/internal/data/db"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recharge",
		Short:         "Recharge progression API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema and exit",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Load the embedded catalog into an empty database and exit",
			RunE:  runSeed,
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(cmd.Context())
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	store, err := db.Open(log, cfg.DBOptions())
	if err != nil {
		return err
	}
	defer store.Close()
	if err := db.Migrate(store.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("Migration complete")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.SeedOnBoot = false
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Services.Catalog.SeedIfEmpty(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if n == 0 {
		a.Log.Info("Catalog already populated, nothing to seed")
		return nil
	}
	a.Log.Info("Seeded catalog", "professions", n)
	return nil
}
