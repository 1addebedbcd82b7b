package schedule

import (
	"testing"
	"time"

	"github.com/dukerupert/pillbox/internal/model"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "09:00", false},
		{"9:00", "09:00", false},
		{" 21:30 ", "21:30", false},
		{"00:00", "00:00", false},
		{"23:59", "23:59", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"9am", "", true},
		{"0900", "", true},
		{"", "", true},
		{"9:5", "", true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortQueue(t *testing.T) {
	entries := []model.QueueEntry{
		{ID: 1, Medicine: "A", Time: "09:00"},
		{ID: 2, Medicine: "B", Time: "08:00"},
		{ID: 3, Medicine: "C", Time: "09:00"},
	}
	SortQueue(entries)

	want := []string{"B", "A", "C"}
	for i, name := range want {
		if entries[i].Medicine != name {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Medicine, name)
		}
	}
	if !entries[0].Next {
		t.Error("expected head flagged next")
	}
	if entries[1].Next || entries[2].Next {
		t.Error("expected only head flagged next")
	}
}

func TestDueBy(t *testing.T) {
	entries := []model.QueueEntry{
		{ID: 1, Time: "08:00"},
		{ID: 2, Time: "09:00"},
		{ID: 3, Time: "09:01"},
	}
	now := time.Date(2026, 10, 17, 9, 0, 30, 0, time.UTC)

	due := DueBy(entries, now)
	if len(due) != 2 {
		t.Fatalf("due = %d, want 2", len(due))
	}
	if due[1].ID != 2 {
		t.Errorf("due[1].ID = %d, want 2", due[1].ID)
	}
	if Day(now) != "2026-10-17" {
		t.Errorf("Day = %q", Day(now))
	}
}
