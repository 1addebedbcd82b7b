package cabinet

import (
	"context"

	"github.com/dukerupert/pillbox/internal/model"
)

// Status summarises the cabinet for the dashboard.
func (s *Service) Status(ctx context.Context) (*model.Status, error) {
	var status model.Status
	err := s.view(ctx, func(st stores) error {
		var err error
		if status.Categories, err = st.categories.Count(); err != nil {
			return err
		}
		if status.Medicines, err = st.medicines.Count(); err != nil {
			return err
		}
		if status.Reminders, err = st.reminders.Count(); err != nil {
			return err
		}
		if status.Queued, err = st.reminders.QueueCount(); err != nil {
			return err
		}
		if status.History, err = st.history.Count(); err != nil {
			return err
		}
		if status.LowStock, err = st.stock.CountLow(); err != nil {
			return err
		}
		status.NextReminder, err = st.reminders.Earliest()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}
