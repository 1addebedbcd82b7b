package store

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/pillbox/internal/model"
)

type MedicineStore struct {
	db Querier
}

func NewMedicineStore(db Querier) *MedicineStore {
	return &MedicineStore{db: db}
}

func scanMedicine(s scanner) (*model.Medicine, error) {
	var m model.Medicine
	if err := s.Scan(&m.ID, &m.Name, &m.Dose, &m.Timings, &m.Category, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

var medicineColumns = []string{"id", "name", "dose", "timings", "category", "created_at"}

const medicineCols = `id, name, dose, timings, category, created_at`

func (s *MedicineStore) GetByName(name string) (*model.Medicine, error) {
	row := s.db.QueryRow(`SELECT `+medicineCols+` FROM medicines WHERE name = ?`, name)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

func (s *MedicineStore) GetByID(id int64) (*model.Medicine, error) {
	row := s.db.QueryRow(`SELECT `+medicineCols+` FROM medicines WHERE id = ?`, id)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

func (s *MedicineStore) Create(name, dose, timings, category string) (*model.Medicine, error) {
	result, err := s.db.Exec(
		`INSERT INTO medicines (name, dose, timings, category) VALUES (?, ?, ?, ?)`,
		name, dose, timings, category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert medicine: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Restore re-inserts a previously deleted medicine under its original id.
func (s *MedicineStore) Restore(m model.Medicine) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO medicines (id, name, dose, timings, category, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Dose, m.Timings, m.Category, m.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("restore medicine: %w", err)
	}
	return nil
}

// Delete removes the medicine; stock, reminders and queued doses go with it.
func (s *MedicineStore) Delete(name string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM medicines WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete medicine: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List returns medicines ordered by name, narrowed by the filter.
func (s *MedicineStore) List(filter model.MedicineFilter) ([]model.Medicine, error) {
	q := sq.Select(medicineColumns...).From("medicines").OrderBy("name ASC")
	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Query != "" {
		q = q.Where(sq.Expr(`name LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(filter.Query)+"%"))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build medicine query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	medicines := make([]model.Medicine, 0)
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		medicines = append(medicines, *m)
	}
	return medicines, rows.Err()
}

func (s *MedicineStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM medicines`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	return count, nil
}
