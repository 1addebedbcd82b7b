package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/pillbox/internal/model"
)

// ReminderStore owns both the recurring schedule and the pending-dose queue.
type ReminderStore struct {
	db Querier
}

func NewReminderStore(db Querier) *ReminderStore {
	return &ReminderStore{db: db}
}

func scanReminder(s scanner) (*model.Reminder, error) {
	var r model.Reminder
	if err := s.Scan(&r.ID, &r.MedicineID, &r.Medicine, &r.Time, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanQueueEntry(s scanner) (*model.QueueEntry, error) {
	var e model.QueueEntry
	if err := s.Scan(&e.ID, &e.MedicineID, &e.Medicine, &e.Time, &e.EnqueuedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

const reminderSelect = `SELECT r.id, r.medicine_id, m.name, r.time, r.created_at
	FROM reminders r JOIN medicines m ON m.id = r.medicine_id`

const queueSelect = `SELECT q.id, q.medicine_id, m.name, q.time, q.enqueued_at
	FROM reminder_queue q JOIN medicines m ON m.id = q.medicine_id`

// Queue order: earliest time first, ties in insertion order.
const queueOrder = ` ORDER BY q.time ASC, q.id ASC`

func (s *ReminderStore) Get(medicineID int64, clock string) (*model.Reminder, error) {
	row := s.db.QueryRow(reminderSelect+` WHERE r.medicine_id = ? AND r.time = ?`, medicineID, clock)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) Create(medicineID int64, clock string) (*model.Reminder, error) {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO reminders (medicine_id, time) VALUES (?, ?)`,
		medicineID, clock,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	return s.Get(medicineID, clock)
}

func (s *ReminderStore) Delete(medicineID int64, clock string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM reminders WHERE medicine_id = ? AND time = ?`, medicineID, clock)
	if err != nil {
		return false, fmt.Errorf("delete reminder: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ReminderStore) listReminders(where string, args ...any) ([]model.Reminder, error) {
	rows, err := s.db.Query(reminderSelect+where+` ORDER BY r.time ASC, r.id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	reminders := make([]model.Reminder, 0)
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// List returns the whole schedule ordered by time of day.
func (s *ReminderStore) List() ([]model.Reminder, error) {
	return s.listReminders("")
}

func (s *ReminderStore) ListByMedicine(medicineID int64) ([]model.Reminder, error) {
	return s.listReminders(` WHERE r.medicine_id = ?`, medicineID)
}

// Earliest returns the reminder with the smallest time of day, or nil when
// nothing is scheduled.
func (s *ReminderStore) Earliest() (*model.Reminder, error) {
	row := s.db.QueryRow(reminderSelect + ` ORDER BY r.time ASC, r.id ASC LIMIT 1`)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("earliest reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reminders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return count, nil
}

func (s *ReminderStore) Enqueue(medicineID int64, clock string) (*model.QueueEntry, error) {
	result, err := s.db.Exec(
		`INSERT INTO reminder_queue (medicine_id, time) VALUES (?, ?)`,
		medicineID, clock,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue dose: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getQueued(id)
}

// RestoreQueued puts a previously removed queue entry back under its
// original id, so it regains its old position among equal times.
func (s *ReminderStore) RestoreQueued(e model.QueueEntry) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO reminder_queue (id, medicine_id, time, enqueued_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.MedicineID, e.Time, e.EnqueuedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("restore queued dose: %w", err)
	}
	return nil
}

// IsQueued reports whether a dose for the medicine at clock is pending.
func (s *ReminderStore) IsQueued(medicineID int64, clock string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM reminder_queue WHERE medicine_id = ? AND time = ?`,
		medicineID, clock,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check queued dose: %w", err)
	}
	return n > 0, nil
}

func (s *ReminderStore) getQueued(id int64) (*model.QueueEntry, error) {
	row := s.db.QueryRow(queueSelect+` WHERE q.id = ?`, id)
	e, err := scanQueueEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queued dose: %w", err)
	}
	return e, nil
}

// Head returns the next dose due, or nil for an empty queue.
func (s *ReminderStore) Head() (*model.QueueEntry, error) {
	row := s.db.QueryRow(queueSelect + queueOrder + ` LIMIT 1`)
	e, err := scanQueueEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue head: %w", err)
	}
	return e, nil
}

func (s *ReminderStore) DeleteQueued(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM reminder_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete queued dose: %w", err)
	}
	return nil
}

// DeleteQueuedMatching drops every pending dose for the medicine at the given
// time and returns what was removed.
func (s *ReminderStore) DeleteQueuedMatching(medicineID int64, clock string) ([]model.QueueEntry, error) {
	entries, err := s.listQueue(` WHERE q.medicine_id = ? AND q.time = ?`, medicineID, clock)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`DELETE FROM reminder_queue WHERE medicine_id = ? AND time = ?`, medicineID, clock); err != nil {
		return nil, fmt.Errorf("delete queued doses: %w", err)
	}
	return entries, nil
}

func (s *ReminderStore) listQueue(where string, args ...any) ([]model.QueueEntry, error) {
	rows, err := s.db.Query(queueSelect+where+queueOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	defer rows.Close()

	entries := make([]model.QueueEntry, 0)
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queued dose: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListQueue returns pending doses in the order they will be served.
func (s *ReminderStore) ListQueue() ([]model.QueueEntry, error) {
	return s.listQueue("")
}

func (s *ReminderStore) ListQueueByMedicine(medicineID int64) ([]model.QueueEntry, error) {
	return s.listQueue(` WHERE q.medicine_id = ?`, medicineID)
}

// ListQueueAt returns pending doses whose time of day equals clock.
func (s *ReminderStore) ListQueueAt(clock string) ([]model.QueueEntry, error) {
	return s.listQueue(` WHERE q.time = ?`, clock)
}

func (s *ReminderStore) QueueCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reminder_queue`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count queue: %w", err)
	}
	return count, nil
}

// Refill replaces the queue with one pending dose per scheduled reminder.
func (s *ReminderStore) Refill() (int, error) {
	if _, err := s.db.Exec(`DELETE FROM reminder_queue`); err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	result, err := s.db.Exec(
		`INSERT INTO reminder_queue (medicine_id, time)
		 SELECT medicine_id, time FROM reminders ORDER BY time ASC, id ASC`,
	)
	if err != nil {
		return 0, fmt.Errorf("refill queue: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
