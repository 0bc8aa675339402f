package scheduler

import (
	"context"
	"time"

	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/ingest"
	"github.com/bublenz/feedpulse/internal/sources"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service keeps the rolling window fresh while the ingest server runs, and
// optionally pulls from a provider on a configured cron schedule.
type Service struct {
	config        *config.Config
	ingestService *ingest.Service
	pullSource    sources.Source // may be nil
	cron          *cron.Cron
}

// NewService creates a new scheduler service. pullSource may be nil when no
// scheduled pull is configured.
func NewService(cfg *config.Config, ingestService *ingest.Service, pullSource sources.Source) *Service {
	return &Service{
		config:        cfg,
		ingestService: ingestService,
		pullSource:    pullSource,
		cron:          cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled jobs.
func (s *Service) Start() error {
	// Prune and re-export the window every 20 seconds
	_, err := s.cron.AddFunc("*/20 * * * * *", func() {
		if err := s.ingestService.ExportWindow(time.Now()); err != nil {
			logrus.Errorf("Scheduled window export failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	if s.pullSource != nil && s.config.PullSchedule != "" {
		_, err = s.cron.AddFunc(s.config.PullSchedule, func() {
			logrus.Infof("Starting scheduled pull from %s", s.pullSource.GetName())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			since := time.Now().Add(-time.Duration(s.config.WindowMinutes) * time.Minute)
			if _, err := s.ingestService.RunPull(ctx, s.pullSource, since); err != nil {
				logrus.Errorf("Scheduled pull failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	logrus.Info("Scheduler started with 20s window maintenance")
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
