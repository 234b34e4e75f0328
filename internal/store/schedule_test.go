package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ybenhayun/shuk/internal/model"
)

func TestSetScheduleReplacesActive(t *testing.T) {
	db := setupTestDB(t)
	schedules := NewScheduleStore(db)
	primary := mustPrimaryList(t, db)
	u := mustUser(t, db, 1, "Noa", model.RoleAdmin)

	first, err := schedules.Set(primary.ID, 4, "18:00", u.ID)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	second, err := schedules.Set(primary.ID, 0, "09:30", u.ID)
	if err != nil {
		t.Fatalf("Set() replacement error = %v", err)
	}

	active, err := schedules.GetActive(primary.ID)
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Fatalf("active schedule = %+v, want id %d", active, second.ID)
	}

	old, err := schedules.GetByID(first.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if old.Active {
		t.Error("replaced schedule should be inactive")
	}

	all, err := schedules.ListActive()
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListActive() returned %d schedules, want 1", len(all))
	}
}

func TestSetScheduleValidation(t *testing.T) {
	db := setupTestDB(t)
	schedules := NewScheduleStore(db)
	primary := mustPrimaryList(t, db)
	u := mustUser(t, db, 1, "Noa", model.RoleAdmin)

	for _, tc := range []struct {
		weekday int
		at      string
	}{
		{7, "18:00"},
		{-1, "18:00"},
		{4, "25:00"},
		{4, "18:75"},
		{4, "6pm"},
	} {
		if _, err := schedules.Set(primary.ID, tc.weekday, tc.at, u.ID); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Set(%d, %q) error = %v, want ErrInvalidInput", tc.weekday, tc.at, err)
		}
	}

	if _, err := schedules.Set(9999, 4, "18:00", u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Set(missing list) error = %v, want ErrNotFound", err)
	}
}

func TestRecordReminder(t *testing.T) {
	db := setupTestDB(t)
	schedules := NewScheduleStore(db)
	primary := mustPrimaryList(t, db)
	u := mustUser(t, db, 1, "Noa", model.RoleAdmin)

	sched, err := schedules.Set(primary.ID, 4, "18:00", u.ID)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	now := time.Date(2026, time.March, 6, 18, 0, 0, 0, time.UTC)
	if err := schedules.RecordReminder(sched.ID, now); err != nil {
		t.Fatalf("RecordReminder() error = %v", err)
	}

	got, err := schedules.GetByID(sched.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.LastReminderAt == nil || !got.LastReminderAt.Equal(now) {
		t.Errorf("last reminder = %v, want %v", got.LastReminderAt, now)
	}
	if got.ReminderCount != 1 {
		t.Errorf("reminder count = %d, want 1", got.ReminderCount)
	}

	if err := schedules.RecordReminder(9999, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordReminder(missing) error = %v, want ErrNotFound", err)
	}
}
