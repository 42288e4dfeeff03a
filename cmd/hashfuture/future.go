package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/chart"
	"github.com/jgoulah/hashfuture/internal/projector"
	"github.com/jgoulah/hashfuture/internal/render"
	"github.com/jgoulah/hashfuture/pkg/models"
)

var (
	futureProducts []string
	futureJSON     bool
)

var futureCmd = &cobra.Command{
	Use:   "future [file|-]",
	Short: "Show break-even projections for a saved history page",
	Long: `Parses a saved Hashflare "History" page and prints, for each product, the
investment, allocated power, profit so far, average profit per payout cycle and
two break-even estimates: one from the average rate and one from a linear trend.

Use "-" to read the page from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runFuture,
}

func init() {
	futureCmd.Flags().StringSliceVar(&futureProducts, "product", nil, "Products to project (default: from config, or all)")
	futureCmd.Flags().BoolVar(&futureJSON, "json", false, "Print projections as JSON")
	rootCmd.AddCommand(futureCmd)
}

func runFuture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(futureProducts) > 0 {
		cfg.Products = futureProducts
	}
	products, err := cfg.GetProducts()
	if err != nil {
		return err
	}

	html, err := readReport(args[0])
	if err != nil {
		return err
	}

	res, err := analyzer.New(newRateSource(cfg)).Analyze(context.Background(), html, products)
	if err != nil {
		return err
	}

	if futureJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Projections)
	}

	fmt.Printf("Parsed %d ledger entries and %d transactions\n", len(res.Log.Entries), len(res.Log.Transactions))
	width := sparklineWidth()
	now := time.Now()
	for _, p := range res.Projections {
		fmt.Println()
		render.Print(os.Stdout, p, now)
		printSparkline(res.Log, p.Product, width)
	}
	return nil
}

func printSparkline(log *models.Log, product models.Product, width int) {
	payouts := chart.Payouts(projector.Timeline(log, product))
	if len(payouts) < 2 {
		return
	}
	fmt.Printf("  %-12s%s\n", "Payouts:", chart.Sparkline(payouts, width))
}

// sparklineWidth fits the sparkline to the terminal, leaving room for the label
func sparklineWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 20 {
		return 40
	}
	return w - 16
}
