package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/pillbox/internal/model"
)

type StockStore struct {
	db Querier
}

func NewStockStore(db Querier) *StockStore {
	return &StockStore{db: db}
}

func scanStock(s scanner) (*model.StockEntry, error) {
	var e model.StockEntry
	if err := s.Scan(&e.MedicineID, &e.Medicine, &e.Quantity, &e.Threshold, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

const stockSelect = `SELECT s.medicine_id, m.name, s.quantity, s.threshold, s.updated_at
	FROM stock s JOIN medicines m ON m.id = s.medicine_id`

func (s *StockStore) Get(medicineID int64) (*model.StockEntry, error) {
	row := s.db.QueryRow(stockSelect+` WHERE s.medicine_id = ?`, medicineID)
	e, err := scanStock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return e, nil
}

func (s *StockStore) Create(medicineID int64, quantity, threshold int) (*model.StockEntry, error) {
	_, err := s.db.Exec(
		`INSERT INTO stock (medicine_id, quantity, threshold) VALUES (?, ?, ?)`,
		medicineID, quantity, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stock: %w", err)
	}
	return s.Get(medicineID)
}

// Restore puts back a stock entry captured before its medicine was deleted.
func (s *StockStore) Restore(e model.StockEntry) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO stock (medicine_id, quantity, threshold, updated_at) VALUES (?, ?, ?, ?)`,
		e.MedicineID, e.Quantity, e.Threshold, e.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

func (s *StockStore) SetQuantity(medicineID int64, quantity int) (*model.StockEntry, error) {
	_, err := s.db.Exec(
		`UPDATE stock SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE medicine_id = ?`,
		quantity, medicineID,
	)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return s.Get(medicineID)
}

func (s *StockStore) list(where string) ([]model.StockEntry, error) {
	rows, err := s.db.Query(stockSelect + where + ` ORDER BY m.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	entries := make([]model.StockEntry, 0)
	for rows.Next() {
		e, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *StockStore) List() ([]model.StockEntry, error) {
	return s.list("")
}

// ListLow returns entries at or below their threshold.
func (s *StockStore) ListLow() ([]model.StockEntry, error) {
	return s.list(` WHERE s.quantity <= s.threshold`)
}

func (s *StockStore) CountLow() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM stock WHERE quantity <= threshold`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return count, nil
}
