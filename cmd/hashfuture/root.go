package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/config"
	"github.com/jgoulah/hashfuture/internal/rates"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "hashfuture",
	Short: "Project when Hashflare mining contracts pay for themselves",
	Long: `HashFuture reads the "History" page of a Hashflare account, converts every
payout and maintenance fee to USD at current exchange rates, and estimates the
date when each contract's profit covers its purchase price.

The page can be saved from a browser, captured with the login/capture commands,
uploaded to the HTTP API, or sent to the Telegram bot.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level for serve, bot and publish (debug, info, warn, error)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// saveConfig saves the configuration file
func saveConfig(cfg *config.Config) error {
	return config.Save(getConfigPath(), cfg)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		level = cfg.LogLevel
	}
	if level == "" {
		level = "info"
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(parsed)
	return nil
}

// newRateSource prefers static rates from config over the ticker endpoint
func newRateSource(cfg *config.Config) rates.Source {
	if len(cfg.Rates.Static) > 0 {
		return rates.Static(cfg.Rates.Static)
	}
	return rates.NewHTTPSource(cfg.Rates.URL, cfg.GetRatesTimeout())
}

// readReport reads a saved history page from a file, or stdin for "-"
func readReport(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return data, nil
}
