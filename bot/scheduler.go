package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/utils"
)

const (
	sweepSchedule   = "@every 5m"
	cleanupSchedule = "@daily"
	actionsBudget   = 10 * time.Minute
)

// scheduler runs the periodic jobs.
type scheduler struct {
	bot    *Bot
	cron   *cron.Cron
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func newScheduler(b *Bot) *scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := b.Logger.Named("scheduler")
	return &scheduler{
		bot:    b,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start schedules the jobs and, when configured, runs the Actions check once
// right away.
func (s *scheduler) Start() error {
	s.logger.Info("Initializing scheduler...")

	cfg := s.bot.Config.Actions
	if cfg.Schedule != "" {
		if _, err := s.cron.AddFunc(cfg.Schedule, s.runActions); err != nil {
			return fmt.Errorf("could not schedule actions check: %w", err)
		}
		s.logger.Info("Actions check scheduled", zap.String("schedule", cfg.Schedule))
	}

	if _, err := s.cron.AddFunc(sweepSchedule, s.sweep); err != nil {
		return fmt.Errorf("could not schedule watchdog sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(cleanupSchedule, s.cleanupStats); err != nil {
		return fmt.Errorf("could not schedule stats cleanup: %w", err)
	}
	s.cron.Start()

	if cfg.RunAtStartup {
		go s.runActions()
	} else {
		s.logger.Info("Skipping actions check on startup as per configuration.")
	}
	return nil
}

func (s *scheduler) runActions() {
	ctx, cancel := context.WithTimeout(s.ctx, actionsBudget)
	defer cancel()

	s.logger.Info("Running actions staleness check...")
	if err := s.bot.ReportStaleActions(ctx); err != nil {
		s.logger.Error("Actions staleness check failed", zap.Error(err))
	}
}

func (s *scheduler) sweep() {
	windows, cooldowns := s.bot.Watchdog.Sweep()
	if windows > 0 || cooldowns > 0 {
		s.logger.Debug("Watchdog state swept", zap.Int("windows", windows), zap.Int("cooldowns", cooldowns))
	}
}

func (s *scheduler) cleanupStats() {
	removed, err := s.bot.Stats.CleanupOldStats(s.ctx, time.Now(), s.bot.Config.Stats.RetentionDays)
	if err != nil {
		utils.Warn("stats", "cleanup", err.Error())
		return
	}
	if removed > 0 {
		utils.Info("stats", "cleanup", fmt.Sprintf("Removed %d trigger usage rows older than %d days", removed, s.bot.Config.Stats.RetentionDays))
	}
}

// Stop cancels running jobs and waits for them to return.
func (s *scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped.")
}
