package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/playbook-backend/internal/app"
	"github.com/yungbote/playbook-backend/internal/data/db"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog schema",
	RunE:  runMigrate,
}

var dbcheckCmd = &cobra.Command{
	Use:   "dbcheck",
	Short: "Verify the database is reachable",
	RunE:  runDBCheck,
}

func openStore() (*db.Service, *logger.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return store, log, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	store, log, err := openStore()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer store.Close()

	if err := store.AutoMigrateAll(); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
	return nil
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	store, log, err := openStore()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer store.Close()

	start := time.Now()
	if err := store.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "database reachable (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}
