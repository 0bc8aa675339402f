package main

import (
	"time"

	"github.com/bublenz/feedpulse/internal/digest"
	"github.com/bublenz/feedpulse/internal/storage"
	"github.com/bublenz/feedpulse/internal/tagging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag every post in the current window with topic and features",
	Long: `Reads the window snapshot, assigns each post a topic, the recency
novelty score, the friend indicator, and advisory sentiment scores, then
writes the per-post feature table and the aggregate topic counts.`,
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	var archive tagging.Archive
	if a.cfg.ArchiveAccount != "" {
		blob, err := storage.NewBlobArchive(a.cfg.ArchiveAccount, a.cfg.ArchiveContainer)
		if err != nil {
			// Archive is best effort; run the tagger anyway
			logrus.Errorf("Failed to initialize archive storage: %v", err)
		} else {
			archive = blob
		}
	}

	var digestSender tagging.DigestSender
	digestService := digest.NewService(a.cfg)
	if digestService.Enabled() {
		digestSender = digestService
	}

	tagger := tagging.NewService(a.cfg, a.store, archive, digestSender)

	run, err := tagger.Run(time.Now())
	if err != nil {
		return err
	}

	cmd.Printf("Tagged %d posts across %d topics\n", run.TotalPosts, len(run.Topics))
	return nil
}
