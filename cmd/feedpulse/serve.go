package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bublenz/feedpulse/internal/chat"
	"github.com/bublenz/feedpulse/internal/scheduler"
	"github.com/bublenz/feedpulse/internal/server"
	"github.com/bublenz/feedpulse/internal/sources"
	"github.com/bublenz/feedpulse/internal/tagging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingest server with the push endpoint and chat companion",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	logrus.Info("Starting feedpulse ingest server")

	// Rebuild the window from the durable log before accepting traffic
	if err := a.ingest.RebuildWindow(time.Now()); err != nil {
		return err
	}
	if err := a.ingest.ExportWindow(time.Now()); err != nil {
		return err
	}

	var chatService *chat.Service
	if a.cfg.GeminiAPIKey != "" {
		chatService = chat.NewService(a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
		logrus.Info("Chat companion enabled")
	} else {
		logrus.Info("Chat companion disabled - no GEMINI_API_KEY")
	}

	tagger := tagging.NewService(a.cfg, a.store, nil, nil)

	var pullSource sources.Source
	if a.cfg.PullProvider != "" {
		pullSource, err = providerByName(a.cfg, a.cfg.PullProvider)
		if err != nil {
			return err
		}
	}

	schedulerService := scheduler.NewService(a.cfg, a.ingest, pullSource)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	srv := server.New(a.cfg, a.ingest, tagger, chatService)
	httpServer := srv.HTTPServer()

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", a.cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
	return nil
}
