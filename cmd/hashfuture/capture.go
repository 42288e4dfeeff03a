package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/config"
	"github.com/jgoulah/hashfuture/internal/scraper"
)

var (
	captureOutput  string
	captureVisible bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save the account history page using the stored login",
	Long:  `Opens the Hashflare history page with the cookies saved by "login", waits for the tables to render and writes the page HTML to a file.`,
	Args:  cobra.NoArgs,
	RunE:  runCapture,
}

func init() {
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "history.html", "Save HTML to this file")
	captureCmd.Flags().BoolVar(&captureVisible, "visible", false, "Show the browser window")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("Capturing %s...\n", cfg.GetHistoryURL())
	html, err := captureHistory(cfg, captureVisible)
	if err != nil {
		return err
	}

	if err := os.WriteFile(captureOutput, html, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", captureOutput, err)
	}

	fmt.Printf("✓ Saved %s to %s\n", humanize.Bytes(uint64(len(html))), captureOutput)
	return nil
}

// captureHistory runs a browser session against the history page
func captureHistory(cfg *config.Config, visible bool) ([]byte, error) {
	if len(cfg.Hashflare.Cookies) == 0 {
		return nil, fmt.Errorf("no cookies found. Run 'hashfuture login' first")
	}

	ctx, cancel := scraper.NewBrowser(context.Background(), visible, 2*time.Minute)
	defer cancel()

	html, err := scraper.CaptureHistory(ctx, cfg.GetHistoryURL(), cfg.Hashflare.Cookies)
	if errors.Is(err, scraper.ErrNotLoggedIn) {
		return nil, fmt.Errorf("%w. Run 'hashfuture login' again", err)
	}
	if err != nil {
		return nil, fmt.Errorf("capturing history: %w", err)
	}
	return html, nil
}
