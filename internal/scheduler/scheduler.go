// Package scheduler runs the cabinet's background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/pillbox/internal/model"
	"github.com/dukerupert/pillbox/internal/notify"
	"github.com/dukerupert/pillbox/internal/schedule"
)

const jobTimeout = 2 * time.Minute

// Cabinet is the part of the cabinet service the jobs drive.
type Cabinet interface {
	RefillQueue(ctx context.Context) (int, error)
	DueDoses(ctx context.Context, now time.Time) ([]model.QueueEntry, error)
	LowStockAlerts(ctx context.Context) ([]model.StockEntry, error)
}

// SentLog remembers delivered notifications per day.
type SentLog interface {
	WasSent(kind model.NotificationKind, ref, day string) (bool, error)
	RecordSent(kind model.NotificationKind, ref, day string) error
	DeleteBefore(day string) (int64, error)
}

type Backups interface {
	Enabled() bool
	RunScheduled(ctx context.Context) error
}

type Config struct {
	Location     *time.Location
	RefillSpec   string
	DueSpec      string
	LowStockSpec string
	BackupSpec   string
}

// Scheduler refills the dosing queue, announces due doses, sends a low-stock
// digest and takes backups.
type Scheduler struct {
	mu       sync.Mutex
	cfg      Config
	cabinet  Cabinet
	sent     SentLog
	notifier notify.Notifier
	backups  Backups
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time
}

func New(cfg Config, cabinet Cabinet, sent SentLog, notifier notify.Notifier, backups Backups, logger *slog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Scheduler{
		cfg:      cfg,
		cabinet:  cabinet,
		sent:     sent,
		notifier: notifier,
		backups:  backups,
		logger:   logger.With("component", "scheduler"),
		now:      time.Now,
	}
}

type job struct {
	name string
	spec string
	run  func(context.Context) error
}

// Start registers the jobs and starts the cron loop. Empty specs are skipped.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cron.New(cron.WithLocation(s.cfg.Location))
	jobs := []job{
		{"refill", s.cfg.RefillSpec, s.refill},
		{"due", s.cfg.DueSpec, s.announceDue},
		{"low_stock", s.cfg.LowStockSpec, s.lowStockDigest},
	}
	if s.backups != nil && s.backups.Enabled() {
		jobs = append(jobs, job{"backup", s.cfg.BackupSpec, s.backups.RunScheduled})
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := c.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return fmt.Errorf("schedule %s job: %w", job.name, err)
		}
		s.logger.Info("job scheduled", "job", job.name, "spec", job.spec)
	}

	c.Start()
	s.cron = c
	return nil
}

// Stop halts the cron loop and waits for running jobs or ctx, whichever
// comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) wrap(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		start := time.Now()
		if err := run(ctx); err != nil {
			s.logger.Error("job failed", "job", name, "error", err)
			return
		}
		s.logger.Debug("job finished", "job", name, "duration", time.Since(start))
	}
}

// refill starts a new day: every scheduled reminder is queued again and old
// dedup records are dropped.
func (s *Scheduler) refill(ctx context.Context) error {
	if _, err := s.cabinet.RefillQueue(ctx); err != nil {
		return err
	}
	cutoff := schedule.Day(s.now().In(s.cfg.Location).AddDate(0, 0, -7))
	if _, err := s.sent.DeleteBefore(cutoff); err != nil {
		return err
	}
	return nil
}

// announceDue notifies once per day for each queued dose whose time has come.
func (s *Scheduler) announceDue(ctx context.Context) error {
	now := s.now().In(s.cfg.Location)
	day := schedule.Day(now)

	due, err := s.cabinet.DueDoses(ctx, now)
	if err != nil {
		return err
	}
	for _, e := range due {
		ref := fmt.Sprintf("%d@%s", e.MedicineID, e.Time)
		sent, err := s.sent.WasSent(model.NotifyDoseDue, ref, day)
		if err != nil {
			return err
		}
		if sent {
			continue
		}
		if err := s.notifier.Notify(ctx, notify.DoseDue(e)); err != nil {
			s.logger.Error("dose notification failed", "medicine", e.Medicine, "time", e.Time, "error", err)
			continue
		}
		if err := s.sent.RecordSent(model.NotifyDoseDue, ref, day); err != nil {
			return err
		}
	}
	return nil
}

// lowStockDigest sends at most one digest a day.
func (s *Scheduler) lowStockDigest(ctx context.Context) error {
	day := schedule.Day(s.now().In(s.cfg.Location))

	sent, err := s.sent.WasSent(model.NotifyLowStock, "digest", day)
	if err != nil || sent {
		return err
	}
	low, err := s.cabinet.LowStockAlerts(ctx)
	if err != nil {
		return err
	}
	if len(low) == 0 {
		return nil
	}
	if err := s.notifier.Notify(ctx, notify.LowStock(low)); err != nil {
		return err
	}
	return s.sent.RecordSent(model.NotifyLowStock, "digest", day)
}
