package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/config"
	"github.com/jgoulah/hashfuture/internal/publisher"
)

var (
	publishCapture  bool
	publishSchedule string
)

var publishCmd = &cobra.Command{
	Use:   "publish [file|-]",
	Short: "Publish projections to MQTT and Home Assistant",
	Long: `Projects every configured product and publishes the result to the MQTT
broker and/or the Home Assistant REST API enabled in config.

With --capture the history page is fetched with the stored login instead of
read from a file. With --schedule (cron syntax, e.g. "@daily" or "0 6 * * *")
the command keeps running and republishes on that schedule, fetching fresh
exchange rates every time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishCapture, "capture", false, "Capture the history page instead of reading a file")
	publishCmd.Flags().StringVar(&publishSchedule, "schedule", "", "Cron schedule for repeated publishing")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if !publishCapture && len(args) == 0 {
		return fmt.Errorf("a report file is required unless --capture is set")
	}
	if publishSchedule != "" && len(args) == 1 && args[0] == "-" {
		return fmt.Errorf("stdin can only be read once; use a file or --capture with --schedule")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	products, err := cfg.GetProducts()
	if err != nil {
		return err
	}

	pub, err := publisher.New(cfg)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	a := analyzer.New(newRateSource(cfg))
	run := func() error {
		fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

		html, err := loadHistory(cfg, args)
		if err != nil {
			return err
		}
		res, err := a.Analyze(context.Background(), html, products)
		if err != nil {
			return err
		}

		published := 0
		for _, p := range res.Projections {
			fmt.Printf("Publishing %s... ", p.Product)
			if err := pub.Publish(p); err != nil {
				fmt.Printf("FAILED: %v\n", err)
				continue
			}
			fmt.Printf("✓\n")
			published++
		}
		fmt.Printf("Successfully published %d/%d products\n", published, len(res.Projections))
		return nil
	}

	if publishSchedule == "" {
		return run()
	}

	c := cron.New()
	if _, err := c.AddFunc(publishSchedule, func() {
		if err := run(); err != nil {
			logrus.WithError(err).Error("Scheduled publish failed")
		}
	}); err != nil {
		return fmt.Errorf("parsing --schedule: %w", err)
	}

	// publish once right away so a restart does not leave stale state until the next tick
	if err := run(); err != nil {
		logrus.WithError(err).Error("Initial publish failed")
	}

	c.Start()
	logrus.WithField("schedule", publishSchedule).Info("Publishing on schedule, press Ctrl-C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	<-c.Stop().Done()
	return nil
}

func loadHistory(cfg *config.Config, args []string) ([]byte, error) {
	if publishCapture {
		return captureHistory(cfg, false)
	}
	return readReport(args[0])
}
