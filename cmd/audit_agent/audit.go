package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karim/freezone-audit/internal/observability"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run a deep audit for one free zone",
	Long:  "Runs the full audit pipeline for a single free zone: local coverage analysis, live website extraction, delta computation, targeted remediation, and recommendation synthesis.",
	RunE:  runAudit,
}

var (
	auditZoneID int64
	auditJSON   bool
)

func init() {
	auditCmd.Flags().Int64Var(&auditZoneID, "zone-id", 0, "Free zone ID to audit (required)")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "Print the raw report JSON instead of the summary")

	if err := auditCmd.MarkFlagRequired("zone-id"); err != nil {
		panic(fmt.Sprintf("failed to mark zone-id flag as required: %v", err))
	}

	rootCmd.AddCommand(auditCmd)
}

func runAudit(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	runner, cleanup, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := runner.Run(ctx, auditZoneID)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if auditJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintResult(result)
	return nil
}
