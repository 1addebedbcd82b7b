package cabinet

import (
	"context"
	"fmt"

	"github.com/dukerupert/pillbox/internal/model"
)

// History returns the undo log newest first.
func (s *Service) History(ctx context.Context) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := s.view(ctx, func(st stores) error {
		var err error
		entries, err = st.history.List()
		return err
	})
	return entries, err
}

// Undo pops the newest history entry and reverses it. Reversal is a no-op
// for targets that were already removed or restored since.
func (s *Service) Undo(ctx context.Context) (*model.HistoryEntry, error) {
	var undone *model.HistoryEntry
	err := s.mutate(ctx, func(st stores) error {
		head, err := st.history.Latest()
		if err != nil {
			return err
		}
		if head == nil {
			return ErrEmptyHistory
		}
		if err := st.history.Delete(head.ID); err != nil {
			return err
		}
		if err := reverse(st, head.Payload); err != nil {
			return fmt.Errorf("undo %s: %w", head.Action, err)
		}
		undone = head
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("undo applied", "action", undone.Action, "details", undone.Details)
	return undone, nil
}

func reverse(st stores, a model.Action) error {
	switch a.Type {
	case model.ActionAddCategory:
		_, err := st.categories.Delete(a.Name)
		return err

	case model.ActionRemoveCategory:
		existing, err := st.categories.GetByName(a.Name)
		if err != nil || existing != nil {
			return err
		}
		_, err = st.categories.Create(a.Name)
		return err

	case model.ActionAddMedicine, model.ActionAddMedicineWithStock:
		_, err := st.medicines.Delete(a.Name)
		return err

	case model.ActionDeleteMedicine:
		return restoreMedicine(st, a)

	case model.ActionUpdateStock, model.ActionDecreaseStock:
		if a.OldStock == nil {
			return nil
		}
		return restoreQuantity(st, a.Name, *a.OldStock)

	case model.ActionScheduleReminder:
		m, err := st.medicines.GetByName(a.Name)
		if err != nil || m == nil {
			return err
		}
		if _, err := st.reminders.Delete(m.ID, a.Time); err != nil {
			return err
		}
		_, err = st.reminders.DeleteQueuedMatching(m.ID, a.Time)
		return err

	case model.ActionDeleteReminder:
		m, err := st.medicines.GetByName(a.Name)
		if err != nil || m == nil {
			return err
		}
		if _, err := st.reminders.Create(m.ID, a.Time); err != nil {
			return err
		}
		for _, q := range a.Queue {
			if err := requeue(st, q); err != nil {
				return err
			}
		}
		return nil

	case model.ActionMarkTaken:
		m, err := st.medicines.GetByName(a.Name)
		if err != nil || m == nil {
			return err
		}
		for _, q := range a.Queue {
			if err := requeue(st, q); err != nil {
				return err
			}
		}
		if a.OldStock == nil {
			return nil
		}
		return restoreQuantity(st, a.Name, *a.OldStock)

	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

func restoreQuantity(st stores, name string, quantity int) error {
	m, err := st.medicines.GetByName(name)
	if err != nil || m == nil {
		return err
	}
	e, err := st.stock.Get(m.ID)
	if err != nil || e == nil {
		return err
	}
	_, err = st.stock.SetQuantity(m.ID, quantity)
	return err
}

// restoreMedicine brings back a deleted medicine under its original id along
// with the stock, reminders and queued doses captured when it was deleted.
func restoreMedicine(st stores, a model.Action) error {
	if a.Medicine == nil {
		return nil
	}
	existing, err := st.medicines.GetByName(a.Medicine.Name)
	if err != nil || existing != nil {
		return err
	}
	if err := st.medicines.Restore(*a.Medicine); err != nil {
		return err
	}
	if a.Stock != nil {
		if err := st.stock.Restore(*a.Stock); err != nil {
			return err
		}
	}
	for _, clock := range a.Reminders {
		if _, err := st.reminders.Create(a.Medicine.ID, clock); err != nil {
			return err
		}
	}
	for _, q := range a.Queue {
		if err := requeue(st, q); err != nil {
			return err
		}
	}
	return nil
}

// requeue puts a dose back in the queue unless its reminder is gone or the
// dose is already pending again, so a reminder never has two queued doses.
func requeue(st stores, q model.QueueEntry) error {
	rem, err := st.reminders.Get(q.MedicineID, q.Time)
	if err != nil || rem == nil {
		return err
	}
	queued, err := st.reminders.IsQueued(q.MedicineID, q.Time)
	if err != nil || queued {
		return err
	}
	return st.reminders.RestoreQueued(q)
}
