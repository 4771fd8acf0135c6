package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/karim/freezone-audit/internal/audit"
	"github.com/karim/freezone-audit/internal/observability"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Audit several free zones in parallel",
	Long:  "Runs the deep audit pipeline for multiple free zones concurrently. Runs share no mutable state, so parallel execution is safe.",
	RunE:  runBatch,
}

var (
	batchZoneIDs     []int64
	batchConcurrency int
)

func init() {
	batchCmd.Flags().Int64SliceVar(&batchZoneIDs, "zone-ids", nil, "Comma-separated free zone IDs (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "Maximum audits in flight")

	if err := batchCmd.MarkFlagRequired("zone-ids"); err != nil {
		panic(fmt.Sprintf("failed to mark zone-ids flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}

	ctx := context.Background()
	runner, cleanup, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var mu sync.Mutex
	results := make(map[int64]*audit.Result, len(batchZoneIDs))
	failures := make(map[int64]error)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, zoneID := range batchZoneIDs {
		zoneID := zoneID
		g.Go(func() error {
			result, err := runner.Run(gCtx, zoneID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[zoneID] = err
			} else {
				results[zoneID] = result
			}
			return nil
		})
	}
	// Individual audit failures are collected, not propagated.
	_ = g.Wait()

	printer := observability.NewPrinter(os.Stdout)
	for _, zoneID := range batchZoneIDs {
		if result, ok := results[zoneID]; ok {
			printer.PrintResult(result)
		}
	}
	for _, zoneID := range batchZoneIDs {
		if err, ok := failures[zoneID]; ok {
			fmt.Fprintf(os.Stderr, "Zone %d failed: %v\n", zoneID, err)
		}
	}

	if len(failures) == len(batchZoneIDs) {
		return fmt.Errorf("all %d audits failed", len(batchZoneIDs))
	}
	return nil
}
