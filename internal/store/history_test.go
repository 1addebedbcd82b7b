package store

import (
	"fmt"
	"testing"

	"github.com/dukerupert/pillbox/internal/model"
)

func TestHistoryAppendAndTrim(t *testing.T) {
	hs := NewHistoryStore(setupTestDB(t))

	for i := 0; i < 5; i++ {
		_, err := hs.Append(model.Action{Type: model.ActionAddCategory, Name: fmt.Sprintf("c%d", i)}, "added", 3)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	count, _ := hs.Count()
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	entries, err := hs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if entries[0].Payload.Name != "c4" {
		t.Errorf("newest = %q, want c4", entries[0].Payload.Name)
	}
	if entries[2].Payload.Name != "c2" {
		t.Errorf("oldest = %q, want c2", entries[2].Payload.Name)
	}
}

func TestHistoryPayloadRoundTrip(t *testing.T) {
	hs := NewHistoryStore(setupTestDB(t))

	old := 7
	h, err := hs.Append(model.Action{Type: model.ActionUpdateStock, Name: "Ibuprofen", OldStock: &old}, "stock", 0)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if h.Action != model.ActionUpdateStock {
		t.Errorf("action = %q", h.Action)
	}

	latest, err := hs.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Payload.OldStock == nil || *latest.Payload.OldStock != 7 {
		t.Errorf("old stock = %v, want 7", latest.Payload.OldStock)
	}

	hs.Delete(latest.ID)
	empty, _ := hs.Latest()
	if empty != nil {
		t.Errorf("expected empty log, got %+v", empty)
	}
}
