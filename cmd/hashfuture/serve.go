package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/server"
	"github.com/jgoulah/hashfuture/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP upload API",
	Long: `Serves an HTTP API where each user uploads a saved history page and then
queries projections and charts for it.

  POST   /api/report           multipart form field "file" (text/html, max 1 MiB)
  GET    /api/future?product=  projection for the last upload
  GET    /api/chart.png?product=
  DELETE /api/report

Users are told apart by the X-User-ID header, or the client IP.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	products, err := cfg.GetProducts()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.GetServerAddr()
	}

	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := session.NewStore(filepath.Join(os.TempDir(), "hashfuture-api"), cfg.GetSessionTTL())
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(
		analyzer.New(newRateSource(cfg)),
		store,
		session.NewLimiters(cfg.GetRequestsPerMinute()),
		products,
		cfg.GetMaxUploadBytes(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, addr)
}
