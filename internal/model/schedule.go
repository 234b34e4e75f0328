package model

import "time"

// MaintenanceSchedule is the weekly reset reminder for a list. At most one
// schedule is active per list.
type MaintenanceSchedule struct {
	ID             int64      `json:"id"`
	ListID         int64      `json:"list_id"`
	Weekday        int        `json:"weekday"` // 0 = Sunday
	TimeOfDay      string     `json:"time_of_day"` // "HH:MM", 24h
	Active         bool       `json:"active"`
	LastReminderAt *time.Time `json:"last_reminder_at"`
	ReminderCount  int64      `json:"reminder_count"`
	CreatedBy      *int64     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}
