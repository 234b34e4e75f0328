// Package scheduler runs the periodic maintenance check that reminds
// admins to reset a list on its scheduled day.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ybenhayun/shuk/internal/notify"
	"github.com/ybenhayun/shuk/internal/push"
	"github.com/ybenhayun/shuk/internal/store"
)

const defaultInterval = 60 * time.Second

type Scheduler struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	schedules *store.ScheduleStore
	lists     *store.ListStore
	notifier  *notify.Notifier
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(logger *slog.Logger, schedules *store.ScheduleStore, lists *store.ListStore, notifier *notify.Notifier) *Scheduler {
	return &Scheduler{
		logger:    logger.With("component", "scheduler"),
		schedules: schedules,
		lists:     lists,
		notifier:  notifier,
		interval:  defaultInterval,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CheckDue(ctx, time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// CheckDue sends a maintenance reminder for every active schedule whose
// weekday and time have arrived, at most once per calendar day. Safe to
// call more than once inside the same window, including after a restart.
func (s *Scheduler) CheckDue(ctx context.Context, now time.Time) {
	active, err := s.schedules.ListActive()
	if err != nil {
		s.logger.Error("list schedules", "error", err)
		return
	}

	for _, sched := range active {
		if !dueAt(sched.Weekday, sched.TimeOfDay, now) {
			continue
		}
		if sched.LastReminderAt != nil && sameDay(*sched.LastReminderAt, now) {
			continue
		}

		list, err := s.lists.GetByID(sched.ListID)
		if err != nil {
			s.logger.Error("load list", "list_id", sched.ListID, "error", err)
			continue
		}
		if list == nil || !list.Active {
			continue
		}

		s.notifier.NotifyAdmins(ctx, "maintenance.reminder", list.Name)
		s.notifier.Publish("schedule", "reminded", sched.ID, map[string]any{"list_id": list.ID}, &push.Payload{
			Title: "Maintenance reminder",
			Body:  list.Name,
			Tag:   "maintenance",
		})

		if err := s.schedules.RecordReminder(sched.ID, now); err != nil {
			s.logger.Error("record reminder", "schedule_id", sched.ID, "error", err)
		}
	}
}

// dueAt reports whether the schedule's weekday and time of day have been
// reached at the given instant.
func dueAt(weekday int, timeOfDay string, now time.Time) bool {
	if int(now.Weekday()) != weekday {
		return false
	}
	at, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return false
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	dueMinutes := at.Hour()*60 + at.Minute()
	return nowMinutes >= dueMinutes
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
