package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/bot"
	"github.com/jgoulah/hashfuture/internal/session"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Runs a Telegram bot that answers saved history pages with break-even
projections and charts. The token comes from telegram.token in config or the
HASHFUTURE_TELEGRAM_TOKEN environment variable (a .env file is read too).`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("no Telegram token configured")
	}
	products, err := cfg.GetProducts()
	if err != nil {
		return err
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connecting to Telegram: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	logrus.WithField("username", api.Self.UserName).Info("Authorized on Telegram")

	store, err := session.NewStore(filepath.Join(os.TempDir(), "hashfuture-bot"), cfg.GetSessionTTL())
	if err != nil {
		return err
	}
	defer store.Close()

	b := bot.New(api, analyzer.New(newRateSource(cfg)), store, session.NewLimiters(cfg.GetRequestsPerMinute()), products)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b.Run(ctx, updates)
	api.StopReceivingUpdates()
	logrus.Info("Bot stopped")
	return nil
}
