package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/ybenhayun/shuk/internal/model"
)

type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func scanSchedule(scanner interface{ Scan(...any) error }) (*model.MaintenanceSchedule, error) {
	var m model.MaintenanceSchedule
	var createdBy sql.NullInt64
	var lastReminderAt sql.NullTime
	var active int

	err := scanner.Scan(
		&m.ID, &m.ListID, &m.Weekday, &m.TimeOfDay, &active,
		&lastReminderAt, &m.ReminderCount, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Active = active != 0
	if createdBy.Valid {
		m.CreatedBy = &createdBy.Int64
	}
	if lastReminderAt.Valid {
		m.LastReminderAt = &lastReminderAt.Time
	}
	return &m, nil
}

const scheduleCols = `id, list_id, weekday, time_of_day, active, last_reminder_at, reminder_count, created_by, created_at`

// Set activates a new schedule for the list, deactivating any prior active
// one in the same transaction. At most one schedule is active per list.
func (s *ScheduleStore) Set(listID int64, weekday int, timeOfDay string, createdBy int64) (*model.MaintenanceSchedule, error) {
	if weekday < 0 || weekday > 6 || !timeOfDayPattern.MatchString(timeOfDay) {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin set schedule: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM lists WHERE id = ? AND active = 1`, listID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check list: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.Exec(
		`UPDATE maintenance_schedules SET active = 0 WHERE list_id = ? AND active = 1`,
		listID,
	); err != nil {
		return nil, fmt.Errorf("deactivate prior schedule: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO maintenance_schedules (list_id, weekday, time_of_day, created_by) VALUES (?, ?, ?, ?)`,
		listID, weekday, timeOfDay, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit set schedule: %w", err)
	}
	return s.GetByID(id)
}

func (s *ScheduleStore) GetByID(id int64) (*model.MaintenanceSchedule, error) {
	row := s.db.QueryRow(`SELECT `+scheduleCols+` FROM maintenance_schedules WHERE id = ?`, id)
	m, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return m, nil
}

// GetActive returns the list's active schedule, or nil.
func (s *ScheduleStore) GetActive(listID int64) (*model.MaintenanceSchedule, error) {
	row := s.db.QueryRow(
		`SELECT `+scheduleCols+` FROM maintenance_schedules WHERE list_id = ? AND active = 1 ORDER BY id DESC LIMIT 1`,
		listID,
	)
	m, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active schedule: %w", err)
	}
	return m, nil
}

// ListActive returns all active schedules.
func (s *ScheduleStore) ListActive() ([]model.MaintenanceSchedule, error) {
	rows, err := s.db.Query(`SELECT ` + scheduleCols + ` FROM maintenance_schedules WHERE active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}
	defer rows.Close()

	var out []model.MaintenanceSchedule
	for rows.Next() {
		m, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// RecordReminder stamps a reminder send, making CheckDue idempotent per
// calendar day.
func (s *ScheduleStore) RecordReminder(id int64, at time.Time) error {
	result, err := s.db.Exec(
		`UPDATE maintenance_schedules SET last_reminder_at = ?, reminder_count = reminder_count + 1 WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("record reminder: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
