package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/pillbox/internal/model"
)

type HistoryStore struct {
	db Querier
}

func NewHistoryStore(db Querier) *HistoryStore {
	return &HistoryStore{db: db}
}

func scanHistory(s scanner) (*model.HistoryEntry, error) {
	var h model.HistoryEntry
	var payload string
	if err := s.Scan(&h.ID, &h.Action, &h.Details, &payload, &h.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &h.Payload); err != nil {
		return nil, fmt.Errorf("decode history payload %d: %w", h.ID, err)
	}
	return &h, nil
}

const historyCols = `id, action, details, payload, created_at`

// Append records an action and trims the log to the newest limit entries.
// A limit of zero or less keeps everything.
func (s *HistoryStore) Append(action model.Action, details string, limit int) (*model.HistoryEntry, error) {
	payload, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("encode history payload: %w", err)
	}
	result, err := s.db.Exec(
		`INSERT INTO history (action, details, payload) VALUES (?, ?, ?)`,
		action.Type, details, string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if limit > 0 {
		_, err := s.db.Exec(
			`DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`,
			limit,
		)
		if err != nil {
			return nil, fmt.Errorf("trim history: %w", err)
		}
	}
	return s.GetByID(id)
}

func (s *HistoryStore) GetByID(id int64) (*model.HistoryEntry, error) {
	row := s.db.QueryRow(`SELECT `+historyCols+` FROM history WHERE id = ?`, id)
	h, err := scanHistory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return h, nil
}

// List returns the log newest first.
func (s *HistoryStore) List() ([]model.HistoryEntry, error) {
	rows, err := s.db.Query(`SELECT ` + historyCols + ` FROM history ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]model.HistoryEntry, 0)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, *h)
	}
	return entries, rows.Err()
}

// Latest returns the most recent entry, or nil when the log is empty.
func (s *HistoryStore) Latest() (*model.HistoryEntry, error) {
	row := s.db.QueryRow(`SELECT ` + historyCols + ` FROM history ORDER BY id DESC LIMIT 1`)
	h, err := scanHistory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest history: %w", err)
	}
	return h, nil
}

func (s *HistoryStore) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

func (s *HistoryStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}
