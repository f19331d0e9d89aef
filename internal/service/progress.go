package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"healthbot/internal/model"
)

// Metric names a plottable accumulator.
type Metric string

const (
	MetricWater    Metric = "water"
	MetricCalories Metric = "calories"
	MetricBurned   Metric = "burned"
)

// SeriesDays is how many days a series covers, today included.
const SeriesDays = 7

func ParseMetric(raw string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(raw))); m {
	case MetricWater, MetricCalories, MetricBurned:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q", raw)
	}
}

// Of extracts the metric from an archived day.
func (m Metric) Of(s model.DaySnapshot) float64 {
	switch m {
	case MetricWater:
		return s.WaterML
	case MetricCalories:
		return s.CaloriesKcal
	case MetricBurned:
		return s.BurnedKcal
	}
	return 0
}

// Live extracts the metric from today's accumulators.
func (m Metric) Live(u *model.User) float64 {
	return m.Of(model.DaySnapshot{
		WaterML:      u.LoggedWaterML,
		CaloriesKcal: u.LoggedCaloriesKcal,
		BurnedKcal:   u.BurnedCaloriesKcal,
	})
}

// Progress is today's standing against the goals.
type Progress struct {
	LoggedWaterML      float64
	WaterGoalML        float64
	WaterLeftML        float64
	LoggedCaloriesKcal float64
	CalorieGoalKcal    float64
	BurnedKcal         float64
	BalanceKcal        float64
}

// DayRecord is one archived day.
type DayRecord struct {
	Date     model.Date
	Snapshot model.DaySnapshot
}

// SeriesPoint is one value of a metric series.
type SeriesPoint struct {
	Date  model.Date
	Value float64
}

// CurrentProgress expects the rollover to have been applied already.
func CurrentProgress(u *model.User) Progress {
	return Progress{
		LoggedWaterML:      u.LoggedWaterML,
		WaterGoalML:        u.WaterGoalML,
		WaterLeftML:        math.Max(0, u.WaterGoalML-u.LoggedWaterML),
		LoggedCaloriesKcal: u.LoggedCaloriesKcal,
		CalorieGoalKcal:    u.CalorieGoalKcal,
		BurnedKcal:         u.BurnedCaloriesKcal,
		BalanceKcal:        u.CalorieGoalKcal - u.LoggedCaloriesKcal + u.BurnedCaloriesKcal,
	}
}

// HistoryListing returns archived days in ascending date order.
func HistoryListing(u *model.User) []DayRecord {
	dates := sortedHistoryDates(u)
	out := make([]DayRecord, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayRecord{Date: d, Snapshot: u.History[d]})
	}
	return out
}

// Series returns the metric over the last SeriesDays distinct days: up to
// SeriesDays-1 most recent archived days followed by today's live value when
// today is not archived.
func Series(u *model.User, metric Metric, today model.Date) []SeriesPoint {
	dates := sortedHistoryDates(u)
	if len(dates) > SeriesDays-1 {
		dates = dates[len(dates)-(SeriesDays-1):]
	}

	points := make([]SeriesPoint, 0, len(dates)+1)
	for _, d := range dates {
		points = append(points, SeriesPoint{Date: d, Value: metric.Of(u.History[d])})
	}
	if _, archived := u.History[today]; !archived {
		points = append(points, SeriesPoint{Date: today, Value: metric.Live(u)})
	}
	return points
}

func sortedHistoryDates(u *model.User) []model.Date {
	dates := make([]model.Date, 0, len(u.History))
	for d := range u.History {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
