package cabinet

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/pillbox/internal/model"
	"github.com/dukerupert/pillbox/internal/stock"
)

// AddMedicineWithStock creates the medicine and its stock entry together.
func (s *Service) AddMedicineWithStock(ctx context.Context, in MedicineInput, quantity, threshold int) (*model.StockEntry, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, invalid("stock", "must be a non-negative integer")
	}
	if threshold < 0 {
		return nil, invalid("threshold", "must be a non-negative integer")
	}

	var entry *model.StockEntry
	err := s.mutate(ctx, func(st stores) error {
		m, err := createMedicine(st, in)
		if err != nil {
			return err
		}
		if entry, err = st.stock.Create(m.ID, quantity, threshold); err != nil {
			return err
		}
		return s.record(st, model.Action{Type: model.ActionAddMedicineWithStock, Name: in.Name},
			fmt.Sprintf("Added medicine %s with stock %d (threshold %d)", in.Name, quantity, threshold))
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func stockFor(st stores, name string) (*model.StockEntry, error) {
	m, err := st.medicines.GetByName(name)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notFound("medicine", name)
	}
	e, err := st.stock.Get(m.ID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, notFound("stock for", name)
	}
	return e, nil
}

// UpdateStock sets the quantity on hand.
func (s *Service) UpdateStock(ctx context.Context, name string, quantity int) (*model.StockEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "medicine name is required")
	}
	if quantity < 0 {
		return nil, invalid("quantity", "must be a non-negative integer")
	}

	var updated *model.StockEntry
	err := s.mutate(ctx, func(st stores) error {
		e, err := stockFor(st, name)
		if err != nil {
			return err
		}
		old := e.Quantity
		if updated, err = st.stock.SetQuantity(e.MedicineID, quantity); err != nil {
			return err
		}
		return s.record(st, model.Action{Type: model.ActionUpdateStock, Name: name, OldStock: &old},
			fmt.Sprintf("Updated stock of %s from %d to %d", name, old, quantity))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DecreaseStock subtracts amount, stopping at zero.
func (s *Service) DecreaseStock(ctx context.Context, name string, amount int) (*model.StockEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "medicine name is required")
	}
	if amount <= 0 {
		return nil, invalid("quantity", "must be a positive integer")
	}

	var updated *model.StockEntry
	err := s.mutate(ctx, func(st stores) error {
		e, err := stockFor(st, name)
		if err != nil {
			return err
		}
		old := e.Quantity
		if updated, err = st.stock.SetQuantity(e.MedicineID, stock.Decrease(old, amount)); err != nil {
			return err
		}
		return s.record(st, model.Action{Type: model.ActionDecreaseStock, Name: name, OldStock: &old},
			fmt.Sprintf("Decreased stock of %s by %d (now %d)", name, amount, updated.Quantity))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LowStockAlerts lists entries at or below their threshold.
func (s *Service) LowStockAlerts(ctx context.Context) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := s.view(ctx, func(st stores) error {
		var err error
		entries, err = st.stock.ListLow()
		return err
	})
	return entries, err
}

func (s *Service) StockLevels(ctx context.Context) ([]model.StockView, error) {
	var entries []model.StockEntry
	err := s.view(ctx, func(st stores) error {
		var err error
		entries, err = st.stock.List()
		return err
	})
	if err != nil {
		return nil, err
	}

	views := make([]model.StockView, 0, len(entries))
	for _, e := range entries {
		views = append(views, stock.View(e))
	}
	return views, nil
}

func (s *Service) CheckStock(ctx context.Context, name string) (*model.StockCheck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "medicine name is required")
	}

	var e *model.StockEntry
	err := s.view(ctx, func(st stores) error {
		var err error
		e, err = stockFor(st, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &model.StockCheck{Medicine: e.Medicine, Quantity: e.Quantity, Available: e.Quantity > 0}, nil
}
