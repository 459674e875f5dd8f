// Package main implements the purchase analytics CLI command for kitman.
// This file reads the shop backend's warehouse; kitman never writes it.
package main

import (
	"errors"
	"fmt"
	"strings"

	"kitman/internal/store"
	"kitman/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// PURCHASE STATS COMMAND
// =============================================================================

var (
	statsDays  int
	statsLimit int
)

// statsCmd summarizes kit purchases
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show kit purchase statistics from the shop warehouse",
	Long: `Summarizes kit purchases from the shop backend's warehouse database.

The warehouse is owned and written by the shop; kitman only reads it. Use it
to decide which kits deserve announcement time.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	wh, err := store.NewWarehouse(cfg.Storage.WarehousePath)
	if err != nil {
		if errors.Is(err, store.ErrWarehouseMissing) {
			fmt.Printf("No warehouse database at %s.\n", cfg.Storage.WarehousePath)
			fmt.Println("The shop backend writes it; check warehouse_path in kitman.yaml or set KITMAN_WAREHOUSE.")
			return nil
		}
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer wh.Close()

	// The leaderboard and the range summary are independent reads; fetch
	// both at once.
	var (
		kits    []types.PurchaseStat
		summary types.StatsSummary
	)
	g, _ := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		kits, err = wh.TopKits(statsDays, statsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = wh.Summary(statsDays)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to read warehouse: %w", err)
	}

	if summary.Purchases == 0 {
		fmt.Printf("No purchases in the last %d days.\n", statsDays)
		return nil
	}

	fmt.Printf("Kit purchases, last %d days\n", statsDays)
	fmt.Println(strings.Repeat("─", 56))
	fmt.Printf("%-16s %10s %12s  %s\n", "KIT", "PURCHASES", "REVENUE", "LAST SALE")
	for _, k := range kits {
		fmt.Printf("%-16s %10d %12.2f  %s\n", k.Kit, k.Purchases, k.Revenue, k.Day)
	}
	fmt.Println(strings.Repeat("─", 56))
	fmt.Printf("Total: %d purchases, %.2f revenue across %d kits (%s to %s)\n",
		summary.Purchases, summary.Revenue, summary.Kits, summary.FirstDay, summary.LastDay)
	return nil
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "Day range to summarize")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "Number of kits to show")
}
