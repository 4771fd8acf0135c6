package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karim/freezone-audit/internal/store"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List available free zones",
	RunE:  runZones,
}

func init() {
	rootCmd.AddCommand(zonesCmd)
}

func runZones(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL required: set database_url in config or DATABASE_URL environment variable")
	}

	ctx := context.Background()
	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	zones, err := db.ListEntities(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Available Free Zones:")
	fmt.Println("---------------------")
	for _, zone := range zones {
		fmt.Printf("ID: %d - Name: %s\n", zone.ID, zone.Name)
	}
	return nil
}
