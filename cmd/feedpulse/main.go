package main

import (
	"fmt"
	"os"

	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/feed"
	"github.com/bublenz/feedpulse/internal/ingest"
	"github.com/bublenz/feedpulse/internal/sources"
	"github.com/bublenz/feedpulse/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "feedpulse",
	Short: "Rolling-window social feed tracker and topic tagger",
	Long: `feedpulse ingests social posts from a demo file, live APIs, or a local
push endpoint into an append-only log, maintains the trailing 30-minute
window, and tags each windowed post with a topic and feature scores.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load environment variables from .env file if it exists
		if err := godotenv.Load(); err != nil {
			logrus.Debug("No .env file found, using environment variables")
		}

		logrus.SetLevel(logrus.InfoLevel)
		if os.Getenv("DEBUG") == "true" {
			logrus.SetLevel(logrus.DebugLevel)
		}
		logrus.SetFormatter(&logrus.JSONFormatter{})
	},
}

// app bundles the pieces every command needs.
type app struct {
	cfg    *config.Config
	log    *feed.Log
	window *feed.Window
	store  *storage.LocalStorage
	ingest *ingest.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	rawLog, err := feed.NewLog(cfg.RawLogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open raw log: %w", err)
	}

	store, err := storage.NewLocalStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	window := feed.NewWindow(cfg.WindowDuration())
	ingestService := ingest.NewService(cfg, rawLog, window, store)

	return &app{
		cfg:    cfg,
		log:    rawLog,
		window: window,
		store:  store,
		ingest: ingestService,
	}, nil
}

// providerByName builds the named API source from configured credentials.
func providerByName(cfg *config.Config, name string) (sources.Source, error) {
	switch name {
	case "reddit":
		return sources.NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUsername, cfg.RedditPassword), nil
	case "x":
		return sources.NewXSource(cfg.XBearerToken), nil
	case "youtube":
		return sources.NewYouTubeSource(cfg.YouTubeAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected reddit, x, or youtube)", name)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
