package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultReminderSpec runs the sweep every day at 09:00 clinic time.
	DefaultReminderSpec = "0 9 * * *"

	sweepTimeout = 5 * time.Minute
)

type ReminderSweeper interface {
	SweepReminders(ctx context.Context) (int, error)
}

// ReminderScheduler triggers the day-before reminder sweep on a cron schedule.
// Overlapping runs are skipped.
type ReminderScheduler struct {
	cron    *cron.Cron
	sweeper ReminderSweeper
	log     *logrus.Logger
}

func NewReminderScheduler(spec string, loc *time.Location, sweeper ReminderSweeper, log *logrus.Logger) (*ReminderScheduler, error) {
	if spec == "" {
		spec = DefaultReminderSpec
	}
	if loc == nil {
		loc = time.Local
	}

	cronLogger := cron.PrintfLogger(log)
	s := &ReminderScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		sweeper: sweeper,
		log:     log,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *ReminderScheduler) Start() {
	s.cron.Start()
	s.log.Info("Reminder scheduler started")
}

// Stop waits for a running sweep to finish.
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Reminder scheduler stopped")
}

func (s *ReminderScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	reminded, err := s.sweeper.SweepReminders(ctx)
	if err != nil {
		s.log.Warnf("Reminder sweep failed: %+v", err)
		return
	}
	s.log.WithField("bookings", reminded).Info("Reminder sweep completed")
}
