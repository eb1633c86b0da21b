package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fastplanner/anvil/pkg/config"
)

// Pruner deletes journal records older than the configured retention period.
type Pruner struct {
	storage       Storage
	retentionDays int
	schedule      string
	scheduler     *Scheduler
	logger        *slog.Logger
}

// NewPruner creates a pruner for the given storage backend. Retention period
// and schedule come from cfg.
func NewPruner(storage Storage, cfg *config.JournalConfig) *Pruner {
	retentionDays := config.DefaultJournalRetentionDays
	schedule := config.DefaultJournalPruneSchedule
	if cfg != nil {
		retentionDays = cfg.RetentionDays
		schedule = cfg.PruneSchedule
	}

	p := &Pruner{
		storage:       storage,
		retentionDays: retentionDays,
		schedule:      schedule,
		logger:        slog.Default().With("component", "journal.retention"),
	}
	p.scheduler = NewScheduler(p, schedule)

	return p
}

// Prune deletes records older than the retention period and returns the
// number deleted. A non-positive retention period disables pruning.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.retentionDays)

	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune failed: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("journal pruned",
			"deleted_count", deleted,
			"retention_days", p.retentionDays,
		)
	} else {
		p.logger.Debug("journal pruning completed, no records deleted",
			"retention_days", p.retentionDays,
		)
	}

	return deleted, nil
}

// Start begins scheduled pruning. Call during application startup.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops scheduled pruning, waiting for a running job to finish.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning run.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}

// Scheduler runs the pruner on a cron schedule.
type Scheduler struct {
	pruner   *Pruner
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs pruner according to the given
// cron expression.
func NewScheduler(pruner *Pruner, schedule string) *Scheduler {
	return &Scheduler{
		pruner:   pruner,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "journal.scheduler"),
	}
}

// Start begins scheduled pruning. An empty schedule disables the scheduler.
// The scheduler stops itself when ctx is canceled.
//
// Common expressions:
//   - "0 3 * * *"   - daily at 3 AM
//   - "0 */6 * * *" - every 6 hours
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("journal retention scheduler started",
		"schedule", s.schedule,
		"retention_days", s.pruner.retentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPruning executes one pruning cycle.
func (s *Scheduler) runPruning(ctx context.Context) {
	if _, err := s.pruner.Prune(ctx); err != nil {
		s.logger.Error("scheduled journal pruning failed", "error", err)
	}
}

// Stop stops the scheduler and waits for any running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("journal retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled pruning time, or nil when the scheduler
// has no scheduled jobs.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
