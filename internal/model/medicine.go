package model

import "time"

// Medicine is keyed by its unique name. Category holds the category name and
// may dangle after the category is removed.
type Medicine struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Dose      string    `json:"dose"`
	Timings   string    `json:"timings"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// MedicineFilter narrows a medicine listing. Zero values match everything.
type MedicineFilter struct {
	Category string
	Query    string
}
