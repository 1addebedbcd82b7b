package cabinet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/pillbox/internal/model"
	"github.com/dukerupert/pillbox/internal/schedule"
	"github.com/dukerupert/pillbox/internal/stock"
)

func reminderArgs(medicine, clock string) (string, string, error) {
	medicine = strings.TrimSpace(medicine)
	clock = strings.TrimSpace(clock)
	if medicine == "" {
		return "", "", invalid("medicine", "medicine name is required")
	}
	if clock == "" {
		return "", "", invalid("time", "time is required")
	}
	normalized, err := schedule.ParseClock(clock)
	if err != nil {
		return "", "", invalid("time", err.Error())
	}
	return medicine, normalized, nil
}

// ScheduleReminder adds a daily reminder and queues today's dose.
func (s *Service) ScheduleReminder(ctx context.Context, medicine, clock string) (*model.Reminder, error) {
	medicine, clock, err := reminderArgs(medicine, clock)
	if err != nil {
		return nil, err
	}

	var created *model.Reminder
	err = s.mutate(ctx, func(st stores) error {
		m, err := st.medicines.GetByName(medicine)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound("medicine", medicine)
		}
		existing, err := st.reminders.Get(m.ID, clock)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict("reminder for %s at %s already exists", medicine, clock)
		}
		if created, err = st.reminders.Create(m.ID, clock); err != nil {
			return err
		}
		if _, err := st.reminders.Enqueue(m.ID, clock); err != nil {
			return err
		}
		return s.record(st, model.Action{Type: model.ActionScheduleReminder, Name: medicine, Time: clock},
			fmt.Sprintf("Scheduled %s at %s", medicine, clock))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteReminder removes the reminder and any queued dose for it. Deleting
// something that is not scheduled succeeds with removed false.
func (s *Service) DeleteReminder(ctx context.Context, medicine, clock string) (bool, error) {
	medicine, clock, err := reminderArgs(medicine, clock)
	if err != nil {
		return false, err
	}

	var removed bool
	err = s.mutate(ctx, func(st stores) error {
		m, err := st.medicines.GetByName(medicine)
		if err != nil || m == nil {
			return err
		}
		if removed, err = st.reminders.Delete(m.ID, clock); err != nil || !removed {
			return err
		}
		queued, err := st.reminders.DeleteQueuedMatching(m.ID, clock)
		if err != nil {
			return err
		}
		return s.record(st, model.Action{
			Type:   model.ActionDeleteReminder,
			Name:   medicine,
			Time:   clock,
			Queued: len(queued) > 0,
			Queue:  queued,
		}, fmt.Sprintf("Deleted reminder for %s at %s", medicine, clock))
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// MarkTaken pops the next due dose and takes one unit from stock. The
// reminder itself stays scheduled.
func (s *Service) MarkTaken(ctx context.Context) (*model.QueueEntry, error) {
	var taken *model.QueueEntry
	err := s.mutate(ctx, func(st stores) error {
		head, err := st.reminders.Head()
		if err != nil {
			return err
		}
		if head == nil {
			return ErrEmptyQueue
		}
		if err := st.reminders.DeleteQueued(head.ID); err != nil {
			return err
		}

		action := model.Action{
			Type:  model.ActionMarkTaken,
			Name:  head.Medicine,
			Time:  head.Time,
			Queue: []model.QueueEntry{*head},
		}
		e, err := st.stock.Get(head.MedicineID)
		if err != nil {
			return err
		}
		if e != nil {
			old := e.Quantity
			action.OldStock = &old
			if _, err := st.stock.SetQuantity(e.MedicineID, stock.Decrease(old, 1)); err != nil {
				return err
			}
		}

		taken = head
		return s.record(st, action, fmt.Sprintf("Took %s (%s)", head.Medicine, head.Time))
	})
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// ViewQueue returns pending doses in serving order with the head flagged.
func (s *Service) ViewQueue(ctx context.Context) ([]model.QueueEntry, error) {
	var entries []model.QueueEntry
	err := s.view(ctx, func(st stores) error {
		var err error
		entries, err = st.reminders.ListQueue()
		return err
	})
	if err != nil {
		return nil, err
	}
	schedule.SortQueue(entries)
	return entries, nil
}

func (s *Service) Reminders(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := s.view(ctx, func(st stores) error {
		var err error
		reminders, err = st.reminders.List()
		return err
	})
	return reminders, err
}

// NextReminder returns the earliest reminder of the day, or nil.
func (s *Service) NextReminder(ctx context.Context) (*model.Reminder, error) {
	var next *model.Reminder
	err := s.view(ctx, func(st stores) error {
		var err error
		next, err = st.reminders.Earliest()
		return err
	})
	return next, err
}

// RefillQueue resets the queue to one dose per scheduled reminder. It is not
// recorded in history.
func (s *Service) RefillQueue(ctx context.Context) (int, error) {
	var n int
	err := s.mutate(ctx, func(st stores) error {
		var err error
		n, err = st.reminders.Refill()
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("queue refilled", "doses", n)
	return n, nil
}

// DueDoses returns queued doses whose time has come by now.
func (s *Service) DueDoses(ctx context.Context, now time.Time) ([]model.QueueEntry, error) {
	entries, err := s.ViewQueue(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.DueBy(entries, now), nil
}
