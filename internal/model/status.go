package model

type Status struct {
	Categories   int       `json:"categories"`
	Medicines    int       `json:"medicines"`
	Reminders    int       `json:"reminders"`
	Queued       int       `json:"queued"`
	History      int       `json:"history"`
	LowStock     int       `json:"low_stock"`
	NextReminder *Reminder `json:"next_reminder"`
}
