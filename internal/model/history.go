package model

import "time"

type ActionType string

const (
	ActionAddCategory          ActionType = "ADD_CATEGORY"
	ActionRemoveCategory       ActionType = "REMOVE_CATEGORY"
	ActionAddMedicine          ActionType = "ADD_MEDICINE"
	ActionAddMedicineWithStock ActionType = "ADD_MEDICINE_WITH_STOCK"
	ActionDeleteMedicine       ActionType = "DELETE_MEDICINE"
	ActionUpdateStock          ActionType = "UPDATE_STOCK"
	ActionDecreaseStock        ActionType = "DECREASE_STOCK"
	ActionScheduleReminder     ActionType = "SCHEDULE_REMINDER"
	ActionDeleteReminder       ActionType = "DELETE_REMINDER"
	ActionMarkTaken            ActionType = "MARK_TAKEN"
)

// Action carries what is needed to reverse a recorded mutation.
type Action struct {
	Type     ActionType `json:"type"`
	Name     string     `json:"name,omitempty"`
	Time     string     `json:"time,omitempty"`
	OldStock *int       `json:"old_stock,omitempty"`
	Queued   bool       `json:"queued,omitempty"`

	// Snapshot of a deleted medicine and everything that hung off it.
	Medicine  *Medicine    `json:"medicine,omitempty"`
	Stock     *StockEntry  `json:"stock,omitempty"`
	Reminders []string     `json:"reminders,omitempty"`
	Queue     []QueueEntry `json:"queue,omitempty"`
}

type HistoryEntry struct {
	ID        int64      `json:"id"`
	Action    ActionType `json:"action"`
	Details   string     `json:"details"`
	Payload   Action     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}
