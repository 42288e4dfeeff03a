package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/render"
)

var ratesCmd = &cobra.Command{
	Use:   "rates [symbol...]",
	Short: "Show the USD exchange rates used for conversion",
	Long:  `Fetches a fresh rate snapshot (or reads the static table from config) and prints the requested symbols, or all of them.`,
	RunE:  runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}

func runRates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	table, err := newRateSource(cfg).Rates(context.Background())
	if err != nil {
		return fmt.Errorf("fetching rates: %w", err)
	}

	symbols := args
	if len(symbols) == 0 {
		for sym := range table {
			symbols = append(symbols, sym)
		}
		sort.Strings(symbols)
	}

	for _, sym := range symbols {
		rate, ok := table.Lookup(sym)
		if !ok {
			fmt.Printf("⚠ %-8s not listed\n", strings.ToUpper(sym))
			continue
		}
		price := render.FormatUSD(rate)
		if rate < 1 {
			price = fmt.Sprintf("$%.8f", rate)
		}
		fmt.Printf("%-10s %s\n", strings.ToUpper(sym), price)
	}
	return nil
}
