package model

import "time"

type StockLevel string

const (
	StockOK  StockLevel = "ok"
	StockLow StockLevel = "low"
	StockOut StockLevel = "out"
)

type StockEntry struct {
	MedicineID int64     `json:"medicine_id"`
	Medicine   string    `json:"medicine"`
	Quantity   int       `json:"quantity"`
	Threshold  int       `json:"threshold"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StockView is a StockEntry decorated for display.
type StockView struct {
	StockEntry
	Level   StockLevel `json:"level"`
	Percent float64    `json:"percent"`
}

type StockCheck struct {
	Medicine  string `json:"medicine"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
}
