package cabinet

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/pillbox/internal/model"
)

type MedicineInput struct {
	Name     string
	Dose     string
	Timings  string
	Category string
}

func (in *MedicineInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Dose = strings.TrimSpace(in.Dose)
	in.Timings = strings.TrimSpace(in.Timings)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return invalid("name", "medicine name is required")
	}
	if in.Category == "" {
		return invalid("category", "category is required")
	}
	return nil
}

// createMedicine checks the category and name before inserting.
func createMedicine(st stores, in MedicineInput) (*model.Medicine, error) {
	category, err := st.categories.GetByName(in.Category)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, notFound("category", in.Category)
	}
	existing, err := st.medicines.GetByName(in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflict("medicine %q already exists", in.Name)
	}
	return st.medicines.Create(in.Name, in.Dose, in.Timings, in.Category)
}

func (s *Service) AddMedicine(ctx context.Context, in MedicineInput) (*model.Medicine, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var created *model.Medicine
	err := s.mutate(ctx, func(st stores) error {
		var err error
		created, err = createMedicine(st, in)
		if err != nil {
			return err
		}
		return s.record(st, model.Action{Type: model.ActionAddMedicine, Name: in.Name},
			fmt.Sprintf("Added medicine %s (%s)", in.Name, in.Category))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteMedicine removes the medicine with its stock, reminders and queued
// doses, keeping a snapshot of all of it for undo.
func (s *Service) DeleteMedicine(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "medicine name is required")
	}

	return s.mutate(ctx, func(st stores) error {
		m, err := st.medicines.GetByName(name)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound("medicine", name)
		}

		action := model.Action{Type: model.ActionDeleteMedicine, Name: name, Medicine: m}
		if action.Stock, err = st.stock.Get(m.ID); err != nil {
			return err
		}
		reminders, err := st.reminders.ListByMedicine(m.ID)
		if err != nil {
			return err
		}
		for _, r := range reminders {
			action.Reminders = append(action.Reminders, r.Time)
		}
		if action.Queue, err = st.reminders.ListQueueByMedicine(m.ID); err != nil {
			return err
		}

		if _, err := st.medicines.Delete(name); err != nil {
			return err
		}
		return s.record(st, action, fmt.Sprintf("Deleted medicine %s", name))
	})
}

// SearchMedicine looks a medicine up by exact name.
func (s *Service) SearchMedicine(ctx context.Context, name string) (*model.Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "medicine name is required")
	}

	var found *model.Medicine
	err := s.view(ctx, func(st stores) error {
		var err error
		found, err = st.medicines.GetByName(name)
		return err
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, notFound("medicine", name)
	}
	return found, nil
}

func (s *Service) Medicines(ctx context.Context, filter model.MedicineFilter) ([]model.Medicine, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Query = strings.TrimSpace(filter.Query)

	var medicines []model.Medicine
	err := s.view(ctx, func(st stores) error {
		var err error
		medicines, err = st.medicines.List(filter)
		return err
	})
	return medicines, err
}

func (s *Service) MedicinesByCategory(ctx context.Context, category string) ([]model.Medicine, error) {
	if strings.TrimSpace(category) == "" {
		return nil, invalid("category", "category is required")
	}
	return s.Medicines(ctx, model.MedicineFilter{Category: category})
}
