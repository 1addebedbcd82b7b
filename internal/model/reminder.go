package model

import "time"

// Reminder is one entry of the recurring daily schedule.
type Reminder struct {
	ID         int64     `json:"id"`
	MedicineID int64     `json:"medicine_id"`
	Medicine   string    `json:"medicine"`
	Time       string    `json:"time"`
	CreatedAt  time.Time `json:"created_at"`
}

// QueueEntry is a dose waiting to be marked taken.
type QueueEntry struct {
	ID         int64     `json:"id"`
	MedicineID int64     `json:"medicine_id"`
	Medicine   string    `json:"medicine"`
	Time       string    `json:"time"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Next       bool      `json:"next"`
}
