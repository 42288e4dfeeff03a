// Package server exposes report upload and projection queries over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/session"
	"github.com/jgoulah/hashfuture/pkg/models"
)

// UserHeader identifies the caller; the client IP is used when absent
const UserHeader = "X-User-ID"

// Server holds the collaborators shared by all handlers
type Server struct {
	analyzer  *analyzer.Analyzer
	store     *session.Store
	limiters  *session.Limiters
	products  []models.Product
	maxUpload int64
}

// New creates a server. products is what an upload is projected for.
func New(a *analyzer.Analyzer, store *session.Store, limiters *session.Limiters, products []models.Product, maxUpload int64) *Server {
	return &Server{
		analyzer:  a,
		store:     store,
		limiters:  limiters,
		products:  products,
		maxUpload: maxUpload,
	}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api", s.rateLimit())
	{
		api.POST("/report", s.uploadReport)
		api.DELETE("/report", s.deleteReport)
		api.GET("/future", s.future)
		api.GET("/chart.png", s.chart)
	}

	return r
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logrus.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func userKey(c *gin.Context) string {
	if id := c.GetHeader(UserHeader); id != "" {
		return id
	}
	return c.ClientIP()
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiters.Allow(userKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"user":     userKey(c),
		}).Info("Request handled")
	}
}
