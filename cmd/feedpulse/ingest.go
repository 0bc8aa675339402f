package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bublenz/feedpulse/internal/sources"
	"github.com/spf13/cobra"
)

var (
	demoFile     string
	demoPlatform string
	pullProvider string
	pullSince    string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Load posts from a demo JSON file into the log and window",
	RunE:  runDemo,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch recent posts from a live provider",
	RunE:  runPull,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Rebuild the window snapshot from the raw log",
	RunE:  runExport,
}

func init() {
	demoCmd.Flags().StringVar(&demoFile, "file", "", "path to demo JSON file (required)")
	demoCmd.Flags().StringVar(&demoPlatform, "platform", "demo", "platform label for demo posts")
	demoCmd.MarkFlagRequired("file")

	pullCmd.Flags().StringVar(&pullProvider, "provider", "", "provider to pull from: reddit, x, youtube (required)")
	pullCmd.Flags().StringVar(&pullSince, "since", "", "ISO start time (default: now minus window)")
	pullCmd.MarkFlagRequired("provider")

	rootCmd.AddCommand(demoCmd, pullCmd, exportCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	source := sources.NewDemoSource(demoFile, demoPlatform)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := a.ingest.RunPull(ctx, source, time.Time{})
	if err != nil {
		return err
	}

	cmd.Printf("Loaded %d demo posts, window now holds %d\n", count, a.ingest.WindowSize())
	return nil
}

func runPull(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	source, err := providerByName(a.cfg, pullProvider)
	if err != nil {
		return err
	}
	if !source.IsEnabled() {
		return fmt.Errorf("provider %s is not configured (missing credentials)", pullProvider)
	}

	since := time.Now().Add(-a.cfg.WindowDuration())
	if pullSince != "" {
		parsed, err := time.Parse(time.RFC3339, pullSince)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		since = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := a.ingest.RunPull(ctx, source, since)
	if err != nil {
		return err
	}

	cmd.Printf("Pulled %d posts from %s, window now holds %d\n", count, pullProvider, a.ingest.WindowSize())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	now := time.Now()
	if err := a.ingest.RebuildWindow(now); err != nil {
		return err
	}
	if err := a.ingest.ExportWindow(now); err != nil {
		return err
	}

	cmd.Printf("Exported window snapshot with %d posts\n", a.ingest.WindowSize())
	return nil
}
