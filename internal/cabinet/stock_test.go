package cabinet

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/pillbox/internal/model"
)

func TestLowStockScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddCategory(ctx, "Pain Relief"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	in := MedicineInput{Name: "Ibuprofen", Dose: "200mg", Timings: "After meals", Category: "Pain Relief"}
	if _, err := svc.AddMedicineWithStock(ctx, in, 5, 10); err != nil {
		t.Fatalf("add with stock: %v", err)
	}

	alerts, err := svc.LowStockAlerts(ctx)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Medicine != "Ibuprofen" {
		t.Fatalf("alerts = %+v, want Ibuprofen", alerts)
	}

	if _, err := svc.UpdateStock(ctx, "Ibuprofen", 50); err != nil {
		t.Fatalf("update: %v", err)
	}
	alerts, _ = svc.LowStockAlerts(ctx)
	if len(alerts) != 0 {
		t.Errorf("alerts after restock = %d, want 0", len(alerts))
	}

	levels, _ := svc.StockLevels(ctx)
	if len(levels) != 1 || levels[0].Level != model.StockOK || levels[0].Percent != 100 {
		t.Errorf("levels = %+v", levels)
	}
}

func TestAddMedicineWithStockIsAtomic(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustAddMedicine(t, svc, "Ibuprofen", "Painkillers")

	_, err := svc.AddMedicineWithStock(ctx, MedicineInput{Name: "Ibuprofen", Category: "Painkillers"}, 5, 1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if _, err := svc.AddMedicineWithStock(ctx, MedicineInput{Name: "Aspirin", Category: "Painkillers"}, -1, 1); !errors.Is(err, ErrValidation) {
		t.Errorf("negative stock err = %v, want ErrValidation", err)
	}
	if _, err := svc.AddMedicineWithStock(ctx, MedicineInput{Name: "Aspirin", Category: "Nope"}, 5, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown category err = %v, want ErrNotFound", err)
	}

	if _, err := svc.SearchMedicine(ctx, "Aspirin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("aspirin should not exist after failed adds, err = %v", err)
	}
	levels, _ := svc.StockLevels(ctx)
	if len(levels) != 0 {
		t.Errorf("stock entries = %d, want 0", len(levels))
	}
}

func TestDecreaseStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.AddMedicineWithStock(ctx, MedicineInput{Name: "Ibuprofen", Category: "Painkillers"}, 3, 1)

	e, err := svc.DecreaseStock(ctx, "Ibuprofen", 10)
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if e.Quantity != 0 {
		t.Errorf("quantity = %d, want 0 (clamped)", e.Quantity)
	}

	if _, err := svc.DecreaseStock(ctx, "Ibuprofen", 0); !errors.Is(err, ErrValidation) {
		t.Errorf("zero amount err = %v, want ErrValidation", err)
	}
	if _, err := svc.DecreaseStock(ctx, "Nope", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}

	check, err := svc.CheckStock(ctx, "Ibuprofen")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if check.Available {
		t.Error("expected unavailable at zero stock")
	}
}

func TestUpdateStockWithoutEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustAddMedicine(t, svc, "Ibuprofen", "Painkillers")
	if _, err := svc.UpdateStock(ctx, "Ibuprofen", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateStock(ctx, "Ibuprofen", -5); !errors.Is(err, ErrValidation) {
		t.Errorf("negative err = %v, want ErrValidation", err)
	}
}
