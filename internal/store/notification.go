package store

import (
	"fmt"

	"github.com/dukerupert/pillbox/internal/model"
)

// NotificationStore remembers which notifications went out on which day so
// the scheduler does not repeat itself.
type NotificationStore struct {
	db Querier
}

func NewNotificationStore(db Querier) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) WasSent(kind model.NotificationKind, ref, day string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications_sent WHERE kind = ? AND ref = ? AND day = ?`,
		kind, ref, day,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check notification sent: %w", err)
	}
	return count > 0, nil
}

func (s *NotificationStore) RecordSent(kind model.NotificationKind, ref, day string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO notifications_sent (kind, ref, day) VALUES (?, ?, ?)`,
		kind, ref, day,
	)
	if err != nil {
		return fmt.Errorf("record notification sent: %w", err)
	}
	return nil
}

// DeleteBefore prunes dedup records for days earlier than day (YYYY-MM-DD).
func (s *NotificationStore) DeleteBefore(day string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM notifications_sent WHERE day < ?`, day)
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	return result.RowsAffected()
}
