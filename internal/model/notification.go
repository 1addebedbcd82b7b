package model

type NotificationKind string

const (
	NotifyDoseDue  NotificationKind = "dose_due"
	NotifyLowStock NotificationKind = "low_stock"
)
