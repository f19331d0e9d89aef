package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbot/internal/model"
)

func TestCurrentProgress(t *testing.T) {
	u := model.NewUser(1, "2025-05-01")
	u.WaterGoalML = 2000
	u.LoggedWaterML = 2500
	u.CalorieGoalKcal = 2200
	u.LoggedCaloriesKcal = 1500
	u.BurnedCaloriesKcal = 300

	p := CurrentProgress(u)
	assert.Equal(t, 0.0, p.WaterLeftML)
	assert.Equal(t, 1000.0, p.BalanceKcal)

	u.LoggedWaterML = 500
	assert.Equal(t, 1500.0, CurrentProgress(u).WaterLeftML)
}

func TestHistoryListingSorted(t *testing.T) {
	u := model.NewUser(1, "2025-05-10")
	assert.Empty(t, HistoryListing(u))

	u.History["2025-05-03"] = model.DaySnapshot{WaterML: 3}
	u.History["2025-04-30"] = model.DaySnapshot{WaterML: 1}
	u.History["2025-05-01"] = model.DaySnapshot{WaterML: 2}

	listing := HistoryListing(u)
	require.Len(t, listing, 3)
	assert.Equal(t, model.Date("2025-04-30"), listing[0].Date)
	assert.Equal(t, model.Date("2025-05-03"), listing[2].Date)
}

func TestSeriesAppendsToday(t *testing.T) {
	u := model.NewUser(1, "2025-05-10")
	u.LoggedWaterML = 700
	u.BurnedCaloriesKcal = 90
	for day := 1; day <= 9; day++ {
		d := model.Date(fmt.Sprintf("2025-05-%02d", day))
		u.History[d] = model.DaySnapshot{WaterML: float64(day * 100), BurnedKcal: float64(day)}
	}

	points := Series(u, MetricWater, "2025-05-10")
	require.Len(t, points, SeriesDays)
	assert.Equal(t, model.Date("2025-05-04"), points[0].Date)
	assert.Equal(t, 400.0, points[0].Value)
	assert.Equal(t, SeriesPoint{Date: "2025-05-10", Value: 700}, points[6])

	burned := Series(u, MetricBurned, "2025-05-10")
	assert.Equal(t, 90.0, burned[6].Value)
}

func TestSeriesShortHistory(t *testing.T) {
	u := model.NewUser(1, "2025-05-10")
	u.LoggedCaloriesKcal = 1234

	points := Series(u, MetricCalories, "2025-05-10")
	assert.Equal(t, []SeriesPoint{{Date: "2025-05-10", Value: 1234}}, points)

	u.History["2025-05-08"] = model.DaySnapshot{CaloriesKcal: 2000}
	points = Series(u, MetricCalories, "2025-05-10")
	assert.Equal(t, []SeriesPoint{{Date: "2025-05-08", Value: 2000}, {Date: "2025-05-10", Value: 1234}}, points)
}

func TestSeriesTodayAlreadyArchived(t *testing.T) {
	u := model.NewUser(1, "2025-05-10")
	u.History["2025-05-10"] = model.DaySnapshot{WaterML: 5}
	u.LoggedWaterML = 999

	points := Series(u, MetricWater, "2025-05-10")
	assert.Equal(t, []SeriesPoint{{Date: "2025-05-10", Value: 5}}, points)
}

func TestSeriesTodayArchivedAmongHistory(t *testing.T) {
	u := model.NewUser(1, "2025-05-10")
	u.LoggedWaterML = 999
	for day := 1; day <= 10; day++ {
		d := model.Date(fmt.Sprintf("2025-05-%02d", day))
		u.History[d] = model.DaySnapshot{WaterML: float64(day)}
	}

	points := Series(u, MetricWater, "2025-05-10")
	require.Len(t, points, SeriesDays-1)
	assert.Equal(t, SeriesPoint{Date: "2025-05-05", Value: 5}, points[0])
	assert.Equal(t, SeriesPoint{Date: "2025-05-10", Value: 10}, points[len(points)-1])
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric(" Water ")
	require.NoError(t, err)
	assert.Equal(t, MetricWater, m)

	_, err = ParseMetric("steps")
	assert.Error(t, err)
}
