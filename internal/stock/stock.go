// Package stock classifies stock entries for alerts and display.
package stock

import "github.com/dukerupert/pillbox/internal/model"

// IsLow reports whether quantity has reached the reorder threshold.
func IsLow(quantity, threshold int) bool {
	return quantity <= threshold
}

func Level(quantity, threshold int) model.StockLevel {
	switch {
	case quantity <= 0:
		return model.StockOut
	case IsLow(quantity, threshold):
		return model.StockLow
	default:
		return model.StockOK
	}
}

// Percent maps quantity onto 0..100 with twice the threshold counting as full.
// A zero threshold reads 100 while anything is left.
func Percent(quantity, threshold int) float64 {
	if threshold <= 0 {
		if quantity > 0 {
			return 100
		}
		return 0
	}
	p := float64(quantity) / float64(2*threshold) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Decrease subtracts amount from quantity without going below zero.
func Decrease(quantity, amount int) int {
	if amount >= quantity {
		return 0
	}
	return quantity - amount
}

func View(e model.StockEntry) model.StockView {
	return model.StockView{
		StockEntry: e,
		Level:      Level(e.Quantity, e.Threshold),
		Percent:    Percent(e.Quantity, e.Threshold),
	}
}
