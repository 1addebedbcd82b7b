// Package schedule holds the time-of-day helpers behind reminders and the
// dosing queue.
package schedule

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/pillbox/internal/model"
)

const clockLayout = "15:04"

var ErrInvalidClock = errors.New("time must be HH:MM in 24-hour format")

// ParseClock accepts H:MM or HH:MM on a 24-hour clock and returns the
// zero-padded HH:MM form.
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[1] == ':' {
		s = "0" + s
	}
	if len(s) != 5 {
		return "", ErrInvalidClock
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return "", ErrInvalidClock
	}
	return t.Format(clockLayout), nil
}

// Clock formats the wall-clock minute of t in HH:MM.
func Clock(t time.Time) string {
	return t.Format(clockLayout)
}

// Day formats t as the calendar day used to key per-day bookkeeping.
func Day(t time.Time) string {
	return t.Format(time.DateOnly)
}

// SortQueue orders entries by time of day, keeping insertion order (id) for
// equal times, and flags the head as next.
func SortQueue(entries []model.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Time != entries[j].Time {
			return entries[i].Time < entries[j].Time
		}
		return entries[i].ID < entries[j].ID
	})
	for i := range entries {
		entries[i].Next = i == 0
	}
}

// DueBy returns the entries whose time of day is at or before now's minute.
func DueBy(entries []model.QueueEntry, now time.Time) []model.QueueEntry {
	clock := Clock(now)
	due := make([]model.QueueEntry, 0)
	for _, e := range entries {
		if e.Time <= clock {
			due = append(due, e)
		}
	}
	return due
}
