package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/sources"
	"github.com/joho/godotenv"
)

// Connectivity smoke test for the configured live providers. Run it after
// filling in .env to see which credentials actually work.
func main() {
	fmt.Println("feedpulse - provider connectivity check")
	fmt.Println("=======================================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	since := time.Now().Add(-cfg.WindowDuration())

	checkSource(ctx, sources.NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUsername, cfg.RedditPassword), since)
	checkSource(ctx, sources.NewXSource(cfg.XBearerToken), since)
	checkSource(ctx, sources.NewYouTubeSource(cfg.YouTubeAPIKey), since)

	fmt.Println("\nDone.")
}

func checkSource(ctx context.Context, source sources.Source, since time.Time) {
	fmt.Printf("- %s: ", source.GetName())

	if !source.IsEnabled() {
		fmt.Println("DISABLED (missing credentials)")
		return
	}

	posts, err := source.FetchRecent(ctx, since)
	if err != nil {
		fmt.Printf("FAILED (%v)\n", err)
		return
	}

	fmt.Printf("OK (%d recent posts)\n", len(posts))
}
