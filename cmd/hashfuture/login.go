package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/scraper"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to Hashflare and save cookies",
	Long: `Opens a browser window for you to login manually.
After successful login, cookies will be extracted and saved to the config file
so that "capture" and "publish --capture" can fetch the history page headless.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Opening browser for Hashflare login...")
	fmt.Println("Please log in manually in the browser window.")
	fmt.Println("Then press Enter here to save...")

	// Give the user plenty of time to get through captchas and 2FA
	ctx, cancel := scraper.NewBrowser(context.Background(), true, 10*time.Minute)
	defer cancel()

	cookies, err := scraper.Login(ctx, cfg.GetLoginURL(), func() { fmt.Scanln() })
	if err != nil {
		return err
	}

	cfg.Hashflare.Cookies = cookies
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Successfully saved %d cookies\n", len(cookies))
	return nil
}
