package service

import (
	"fmt"
	"strings"

	"healthbot/internal/model"
)

// ReminderService builds human-readable progress summaries for the evening reminder
// and for /check_progress.
type ReminderService struct {
	store *UserStore
	clock Clock
}

func NewReminderService(store *UserStore, clock Clock) *ReminderService {
	return &ReminderService{store: store, clock: clock}
}

// Summary rolls the user's day over if needed and renders today's progress.
func (s *ReminderService) Summary(userID int64) (string, error) {
	today := s.clock.Today()
	var progress Progress
	err := s.store.Update(userID, func(u *model.User) error {
		if !u.HasProfile() {
			return fmt.Errorf("user %d: profile not set", userID)
		}
		EnsureCurrent(u, today)
		progress = CurrentProgress(u)
		return nil
	})
	if err != nil {
		return "", err
	}
	return FormatProgress(progress), nil
}

// History rolls the user's day over if needed and renders the archived days.
func (s *ReminderService) History(userID int64) (string, error) {
	var days []DayRecord
	err := s.current(userID, func(u *model.User) {
		days = HistoryListing(u)
	})
	if err != nil {
		return "", err
	}
	return FormatHistory(days), nil
}

// Series returns the recent points of metric, today included.
func (s *ReminderService) Series(userID int64, metric Metric) ([]SeriesPoint, error) {
	today := s.clock.Today()
	var points []SeriesPoint
	err := s.current(userID, func(u *model.User) {
		points = Series(u, metric, today)
	})
	return points, err
}

func (s *ReminderService) current(userID int64, fn func(u *model.User)) error {
	today := s.clock.Today()
	return s.store.Update(userID, func(u *model.User) error {
		EnsureCurrent(u, today)
		fn(u)
		return nil
	})
}

// DailySummary is the evening reminder text.
func (s *ReminderService) DailySummary(userID int64) (string, error) {
	text, err := s.Summary(userID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("🌙 <b>Итоги дня</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", s.clock.Time().Format("02.01.2006")))
	builder.WriteString(text)
	return builder.String(), nil
}

func FormatProgress(p Progress) string {
	var builder strings.Builder
	builder.WriteString("📊 <b>Прогресс:</b>\n")
	builder.WriteString(fmt.Sprintf("💧 Вода: %.0f / %.0f мл\n", p.LoggedWaterML, p.WaterGoalML))
	builder.WriteString(fmt.Sprintf("Осталось: %.0f мл\n", p.WaterLeftML))
	builder.WriteString(fmt.Sprintf("🍽 Калории: %.0f / %.0f ккал\n", p.LoggedCaloriesKcal, p.CalorieGoalKcal))
	builder.WriteString(fmt.Sprintf("Сожжено: %.0f ккал\n", p.BurnedKcal))
	builder.WriteString(fmt.Sprintf("Баланс: %.0f ккал", p.BalanceKcal))
	return builder.String()
}

func FormatHistory(days []DayRecord) string {
	if len(days) == 0 {
		return "История пока пуста."
	}
	var builder strings.Builder
	builder.WriteString("📅 <b>История:</b>\n")
	for _, day := range days {
		builder.WriteString(fmt.Sprintf("%s — 💧 %.0f мл, 🍽 %.0f ккал, 🔥 %.0f ккал\n",
			day.Date, day.Snapshot.WaterML, day.Snapshot.CaloriesKcal, day.Snapshot.BurnedKcal))
	}
	return strings.TrimSpace(builder.String())
}
