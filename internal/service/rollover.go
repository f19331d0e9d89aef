package service

import (
	"log"

	"healthbot/internal/model"
)

// EnsureCurrent archives the accumulators of the last touched day into history and
// resets them when today differs from it. It returns true when a rollover happened.
//
// The call is idempotent for a given today. A today earlier than LastUpdateDate is
// treated as clock regression and leaves the record untouched.
func EnsureCurrent(u *model.User, today model.Date) bool {
	if u == nil || today.IsZero() || u.LastUpdateDate == today {
		return false
	}

	if !u.LastUpdateDate.IsZero() && today.Before(u.LastUpdateDate) {
		log.Printf("[warn] clock regression for user=%d: today=%s last_update=%s", u.TelegramID, today, u.LastUpdateDate)
		return false
	}

	if !u.LastUpdateDate.IsZero() {
		if u.History == nil {
			u.History = make(map[model.Date]model.DaySnapshot)
		}
		u.History[u.LastUpdateDate] = model.DaySnapshot{
			WaterML:      u.LoggedWaterML,
			CaloriesKcal: u.LoggedCaloriesKcal,
			BurnedKcal:   u.BurnedCaloriesKcal,
		}
	}

	u.LoggedWaterML = 0
	u.LoggedCaloriesKcal = 0
	u.BurnedCaloriesKcal = 0
	u.LastUpdateDate = today
	return true
}
