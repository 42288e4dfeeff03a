package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/report"
	"github.com/jgoulah/hashfuture/pkg/models"
)

var (
	listProduct string
	listKind    string
)

var listCmd = &cobra.Command{
	Use:   "list [file|-]",
	Short: "List parsed ledger entries",
	Long:  `Displays every classified ledger row of a saved history page with its USD value, most recent first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listProduct, "product", "", "Filter by product (SHA-256, Scrypt, ETHASH, X11)")
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by kind (payout, maintenance, purchased, allocation)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	var product models.Product
	if listProduct != "" {
		p, ok := models.ParseProduct(listProduct)
		if !ok {
			return fmt.Errorf("unknown product %q", listProduct)
		}
		product = p
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	html, err := readReport(args[0])
	if err != nil {
		return err
	}

	table, err := newRateSource(cfg).Rates(context.Background())
	if err != nil {
		return fmt.Errorf("fetching rates: %w", err)
	}

	log, err := report.Parse(html, table)
	if err != nil {
		return err
	}

	fmt.Println("------------------------------------------------------------------------")
	fmt.Printf("%-16s  %-12s  %-8s  %14s  %10s\n", "Time", "Kind", "Product", "Amount", "USD")
	fmt.Println("------------------------------------------------------------------------")

	var total decimal.Decimal
	count := 0
	for _, e := range log.Entries {
		c := e.Classification
		if product != "" && c.Product != product {
			continue
		}
		if listKind != "" && string(c.Kind) != listKind {
			continue
		}

		amount := e.Delta.String()
		if c.Currency != "" {
			amount += " " + c.Currency
		}
		fmt.Printf("%-16s  %-12s  %-8s  %14s  %10s\n",
			e.Time.Format("2006-01-02 15:04"), c.Kind, c.Product, amount, e.USD.Delta.StringFixed(2))
		total = total.Add(e.USD.Delta)
		count++
	}

	fmt.Println("------------------------------------------------------------------------")
	fmt.Printf("Total: $%s (%d entries)\n", total.StringFixed(2), count)
	return nil
}
