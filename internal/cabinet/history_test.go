package cabinet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dukerupert/pillbox/internal/model"
)

func TestUndoEmptyHistory(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Undo(context.Background()); !errors.Is(err, ErrEmptyHistory) {
		t.Errorf("err = %v, want ErrEmptyHistory", err)
	}
}

func TestHistoryCap(t *testing.T) {
	svc := setupService(t, Options{HistoryLimit: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.AddCategory(ctx, fmt.Sprintf("Extra %d", i))
	}
	entries, _ := svc.History(ctx)
	if len(entries) != 3 {
		t.Fatalf("history = %d, want 3", len(entries))
	}
	if entries[0].Action != model.ActionAddCategory || entries[0].Payload.Name != "Extra 4" {
		t.Errorf("newest = %+v", entries[0])
	}
}

func TestUndoReversesEachAction(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(t *testing.T, svc *Service)
		act   func(t *testing.T, svc *Service)
		check func(t *testing.T, svc *Service)
	}{
		{
			name: "add category",
			act: func(t *testing.T, svc *Service) {
				svc.AddCategory(ctx, "Herbal")
			},
			check: func(t *testing.T, svc *Service) {
				categories, _ := svc.Categories(ctx)
				for _, c := range categories {
					if c.Name == "Herbal" {
						t.Error("category still present")
					}
				}
			},
		},
		{
			name: "remove category",
			act: func(t *testing.T, svc *Service) {
				svc.RemoveCategory(ctx, "Antacids")
			},
			check: func(t *testing.T, svc *Service) {
				categories, _ := svc.Categories(ctx)
				if len(categories) != 5 {
					t.Errorf("categories = %d, want 5", len(categories))
				}
			},
		},
		{
			name: "add medicine with stock",
			act: func(t *testing.T, svc *Service) {
				svc.AddMedicineWithStock(ctx, MedicineInput{Name: "A", Category: "Vitamins"}, 5, 1)
			},
			check: func(t *testing.T, svc *Service) {
				if _, err := svc.SearchMedicine(ctx, "A"); !errors.Is(err, ErrNotFound) {
					t.Errorf("medicine still present, err = %v", err)
				}
				levels, _ := svc.StockLevels(ctx)
				if len(levels) != 0 {
					t.Errorf("stock entries = %d, want 0", len(levels))
				}
			},
		},
		{
			name: "delete medicine",
			setup: func(t *testing.T, svc *Service) {
				svc.AddMedicineWithStock(ctx, MedicineInput{Name: "A", Dose: "1 tab", Category: "Vitamins"}, 5, 1)
				svc.ScheduleReminder(ctx, "A", "09:00")
				svc.ScheduleReminder(ctx, "A", "21:00")
			},
			act: func(t *testing.T, svc *Service) {
				svc.DeleteMedicine(ctx, "A")
			},
			check: func(t *testing.T, svc *Service) {
				m, err := svc.SearchMedicine(ctx, "A")
				if err != nil {
					t.Fatalf("search: %v", err)
				}
				if m.Dose != "1 tab" {
					t.Errorf("dose = %q", m.Dose)
				}
				check, _ := svc.CheckStock(ctx, "A")
				if check == nil || check.Quantity != 5 {
					t.Errorf("stock = %+v, want 5", check)
				}
				reminders, _ := svc.Reminders(ctx)
				if len(reminders) != 2 {
					t.Errorf("reminders = %d, want 2", len(reminders))
				}
				queue, _ := svc.ViewQueue(ctx)
				if len(queue) != 2 {
					t.Errorf("queue = %d, want 2", len(queue))
				}
			},
		},
		{
			name: "update stock",
			setup: func(t *testing.T, svc *Service) {
				svc.AddMedicineWithStock(ctx, MedicineInput{Name: "A", Category: "Vitamins"}, 5, 1)
			},
			act: func(t *testing.T, svc *Service) {
				svc.UpdateStock(ctx, "A", 40)
			},
			check: func(t *testing.T, svc *Service) {
				check, _ := svc.CheckStock(ctx, "A")
				if check.Quantity != 5 {
					t.Errorf("quantity = %d, want 5", check.Quantity)
				}
			},
		},
		{
			name: "decrease stock",
			setup: func(t *testing.T, svc *Service) {
				svc.AddMedicineWithStock(ctx, MedicineInput{Name: "A", Category: "Vitamins"}, 5, 1)
			},
			act: func(t *testing.T, svc *Service) {
				svc.DecreaseStock(ctx, "A", 9)
			},
			check: func(t *testing.T, svc *Service) {
				check, _ := svc.CheckStock(ctx, "A")
				if check.Quantity != 5 {
					t.Errorf("quantity = %d, want 5", check.Quantity)
				}
			},
		},
		{
			name: "schedule reminder",
			setup: func(t *testing.T, svc *Service) {
				mustAddMedicine(t, svc, "A", "Vitamins")
			},
			act: func(t *testing.T, svc *Service) {
				svc.ScheduleReminder(ctx, "A", "09:00")
			},
			check: func(t *testing.T, svc *Service) {
				reminders, _ := svc.Reminders(ctx)
				queue, _ := svc.ViewQueue(ctx)
				if len(reminders) != 0 || len(queue) != 0 {
					t.Errorf("reminders = %d, queue = %d, want 0/0", len(reminders), len(queue))
				}
			},
		},
		{
			name: "delete reminder",
			setup: func(t *testing.T, svc *Service) {
				mustAddMedicine(t, svc, "A", "Vitamins")
				svc.ScheduleReminder(ctx, "A", "09:00")
			},
			act: func(t *testing.T, svc *Service) {
				svc.DeleteReminder(ctx, "A", "09:00")
			},
			check: func(t *testing.T, svc *Service) {
				reminders, _ := svc.Reminders(ctx)
				queue, _ := svc.ViewQueue(ctx)
				if len(reminders) != 1 || len(queue) != 1 {
					t.Errorf("reminders = %d, queue = %d, want 1/1", len(reminders), len(queue))
				}
			},
		},
		{
			name: "mark taken",
			setup: func(t *testing.T, svc *Service) {
				svc.AddMedicineWithStock(ctx, MedicineInput{Name: "A", Category: "Vitamins"}, 5, 1)
				svc.ScheduleReminder(ctx, "A", "09:00")
			},
			act: func(t *testing.T, svc *Service) {
				svc.MarkTaken(ctx)
			},
			check: func(t *testing.T, svc *Service) {
				queue, _ := svc.ViewQueue(ctx)
				if len(queue) != 1 || !queue[0].Next {
					t.Errorf("queue = %+v, want dose restored at head", queue)
				}
				check, _ := svc.CheckStock(ctx, "A")
				if check.Quantity != 5 {
					t.Errorf("quantity = %d, want 5", check.Quantity)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			if tt.setup != nil {
				tt.setup(t, svc)
			}
			before := historyLen(t, svc)
			tt.act(t, svc)
			if got := historyLen(t, svc); got != before+1 {
				t.Fatalf("history after act = %d, want %d", got, before+1)
			}

			if _, err := svc.Undo(ctx); err != nil {
				t.Fatalf("undo: %v", err)
			}
			if got := historyLen(t, svc); got != before {
				t.Errorf("history after undo = %d, want %d", got, before)
			}
			tt.check(t, svc)
		})
	}
}

func TestUndoIsNoOpWhenTargetGone(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.AddMedicineWithStock(ctx, MedicineInput{Name: "A", Category: "Vitamins"}, 5, 1)
	svc.UpdateStock(ctx, "A", 9)
	svc.DeleteMedicine(ctx, "A")
	svc.AddMedicine(ctx, MedicineInput{Name: "A", Category: "Vitamins"})

	// Undoing the re-add removes it; undoing the delete then restores the
	// original; undoing the stock update sets the old quantity back.
	for i := 0; i < 3; i++ {
		if _, err := svc.Undo(ctx); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	check, err := svc.CheckStock(ctx, "A")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if check.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", check.Quantity)
	}
}

func TestUndoMarkTakenAfterRefill(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.AddMedicineWithStock(ctx, MedicineInput{Name: "A", Category: "Vitamins"}, 10, 2)
	if _, err := svc.ScheduleReminder(ctx, "A", "09:00"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.MarkTaken(ctx); err != nil {
		t.Fatalf("mark taken: %v", err)
	}
	if _, err := svc.RefillQueue(ctx); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if _, err := svc.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}

	queue, _ := svc.ViewQueue(ctx)
	reminders, _ := svc.Reminders(ctx)
	if len(queue) != len(reminders) {
		t.Fatalf("queue has %d entries for %d reminders: %+v", len(queue), len(reminders), queue)
	}
	check, _ := svc.CheckStock(ctx, "A")
	if check.Quantity != 10 {
		t.Errorf("quantity = %d, want 10 restored", check.Quantity)
	}
}

func TestUndoMarkTakenAfterReminderDeleted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustAddMedicine(t, svc, "A", "Vitamins")
	svc.ScheduleReminder(ctx, "A", "09:00")
	svc.MarkTaken(ctx)

	if _, err := svc.DeleteReminder(ctx, "A", "09:00"); err != nil {
		t.Fatalf("delete reminder: %v", err)
	}
	svc.RefillQueue(ctx)

	// Drop the delete-reminder entry so the next undo reaches mark taken
	// while the reminder is still gone.
	head, err := svc.History(ctx)
	if err != nil || len(head) < 2 {
		t.Fatalf("history = %+v, %v", head, err)
	}
	if _, err := svc.db.Exec(`DELETE FROM history WHERE id = ?`, head[0].ID); err != nil {
		t.Fatalf("drop history entry: %v", err)
	}

	if _, err := svc.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	queue, _ := svc.ViewQueue(ctx)
	if len(queue) != 0 {
		t.Errorf("queue = %+v, want empty for an unscheduled dose", queue)
	}
}
