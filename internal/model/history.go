package model

import "time"

// DaySnapshot is the frozen accumulator state of one archived day.
type DaySnapshot struct {
	WaterML      float64 `json:"water"`
	CaloriesKcal float64 `json:"calories"`
	BurnedKcal   float64 `json:"burned"`
}

// HistoryEntry is the storage row for one archived day.
type HistoryEntry struct {
	ID           uint  `gorm:"primaryKey"`
	UserID       int64 `gorm:"uniqueIndex:idx_history_user_day"`
	Day          Date  `gorm:"uniqueIndex:idx_history_user_day"`
	WaterML      float64
	CaloriesKcal float64
	BurnedKcal   float64
	CreatedAt    time.Time
}

func (e HistoryEntry) Snapshot() DaySnapshot {
	return DaySnapshot{WaterML: e.WaterML, CaloriesKcal: e.CaloriesKcal, BurnedKcal: e.BurnedKcal}
}
