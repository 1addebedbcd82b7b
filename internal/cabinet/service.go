// Package cabinet is the medicine cabinet: categories, medicines, stock,
// the reminder schedule with its dosing queue, and an undoable history.
package cabinet

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/pillbox/internal/model"
	"github.com/dukerupert/pillbox/internal/store"
)

const (
	DefaultCategoryLimit = 10
	DefaultHistoryLimit  = 20
)

type Options struct {
	// CategoryLimit caps the number of categories. Zero means unlimited.
	CategoryLimit int
	// HistoryLimit caps the undo log. Zero means unlimited.
	HistoryLimit int
}

// Service serialises every operation behind one mutex and runs each mutation
// in a single transaction together with its history record.
type Service struct {
	mu     sync.Mutex
	db     *sql.DB
	opts   Options
	logger *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		opts:   opts,
		logger: logger.With("component", "cabinet"),
	}
}

type stores struct {
	categories *store.CategoryStore
	medicines  *store.MedicineStore
	stock      *store.StockStore
	reminders  *store.ReminderStore
	history    *store.HistoryStore
}

func newStores(q store.Querier) stores {
	return stores{
		categories: store.NewCategoryStore(q),
		medicines:  store.NewMedicineStore(q),
		stock:      store.NewStockStore(q),
		reminders:  store.NewReminderStore(q),
		history:    store.NewHistoryStore(q),
	}
}

// mutate runs fn in a transaction. Any error rolls the whole operation back.
func (s *Service) mutate(ctx context.Context, fn func(st stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newStores(tx)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Service) view(ctx context.Context, fn func(st stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(newStores(s.db))
}

func (s *Service) record(st stores, action model.Action, details string) error {
	if _, err := st.history.Append(action, details, s.opts.HistoryLimit); err != nil {
		return err
	}
	s.logger.Debug("recorded action", "action", action.Type, "details", details)
	return nil
}
