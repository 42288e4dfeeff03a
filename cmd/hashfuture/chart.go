package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/chart"
	"github.com/jgoulah/hashfuture/internal/projector"
	"github.com/jgoulah/hashfuture/pkg/models"
)

var (
	chartProduct string
	chartOutput  string
	chartWidth   float64
	chartHeight  float64
)

var chartCmd = &cobra.Command{
	Use:   "chart [file|-]",
	Short: "Draw payouts, fees and allocated power as a PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartProduct, "product", string(models.SHA256), "Product to chart")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "chart.png", "Output PNG file")
	chartCmd.Flags().Float64Var(&chartWidth, "width", 8, "Image width in inches")
	chartCmd.Flags().Float64Var(&chartHeight, "height", 6, "Image height in inches")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	product, ok := models.ParseProduct(chartProduct)
	if !ok {
		return fmt.Errorf("unknown product: %s", chartProduct)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	html, err := readReport(args[0])
	if err != nil {
		return err
	}

	res, err := analyzer.New(newRateSource(cfg)).Analyze(context.Background(), html, []models.Product{product})
	if err != nil {
		return err
	}

	f, err := os.Create(chartOutput)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	timeline := projector.Timeline(res.Log, product)
	if err := chart.RenderPNG(f, product, timeline, vg.Length(chartWidth)*vg.Inch, vg.Length(chartHeight)*vg.Inch); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	fmt.Printf("✓ Saved %s chart (%d entries) to %s\n", product, len(timeline), chartOutput)
	return nil
}
