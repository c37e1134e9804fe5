package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/config"
)

const reminderLockName = "reminder-sweep"

// Locker hands out a named lock. *redis.Client satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// ReminderScheduler runs the reminder sweep on a timer. With a Locker, only
// one instance sweeps per tick.
type ReminderScheduler struct {
	notifications NotificationService
	locker        Locker
	interval      time.Duration
	lockTTL       time.Duration
	logger        *zap.Logger
}

// NewReminderScheduler locker may be nil.
func NewReminderScheduler(notifications NotificationService, locker Locker, cfg config.ReminderConfig, logger *zap.Logger) *ReminderScheduler {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReminderScheduler{
		notifications: notifications,
		locker:        locker,
		interval:      cfg.Interval,
		lockTTL:       ttl,
		logger:        logger,
	}
}

// Run blocks until ctx is done. It returns immediately when the interval
// is not positive.
func (s *ReminderScheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("reminder scheduler disabled")
		return
	}

	s.logger.Info("reminder scheduler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single guarded sweep. It reports whether the sweep ran.
func (s *ReminderScheduler) RunOnce(ctx context.Context) bool {
	if s.locker != nil {
		release, ok, err := s.locker.AcquireLock(ctx, reminderLockName, s.lockTTL)
		if err != nil {
			s.logger.Warn("acquire reminder lock failed", zap.Error(err))
			return false
		}
		if !ok {
			s.logger.Debug("reminder sweep held by another instance")
			return false
		}
		defer release()
	}

	if _, err := s.notifications.SendReminders(ctx); err != nil {
		s.logger.Error("reminder sweep failed", zap.Error(err))
		return false
	}
	return true
}
