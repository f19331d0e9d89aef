package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"healthbot/internal/model"
)

func TestWaterGoalScenario(t *testing.T) {
	assert.Equal(t, 3100.0, WaterGoalML(70, 45, 28))
}

func TestWaterGoalActivityBlocks(t *testing.T) {
	base := WaterGoalML(70, 0, 20)
	assert.Equal(t, 2100.0, base)
	assert.Equal(t, base, WaterGoalML(70, 29, 20))
	assert.Equal(t, base+500, WaterGoalML(70, 30, 20))
	assert.Equal(t, base+500, WaterGoalML(70, 31, 20))
	assert.Equal(t, base+1000, WaterGoalML(70, 60, 20))
}

func TestWaterGoalTemperatureBands(t *testing.T) {
	cases := []struct {
		temp float64
		want float64
	}{
		{-10, 2100},
		{25, 2100},
		{25.1, 2600},
		{30, 2600},
		{30.5, 3100},
		{45, 3100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WaterGoalML(70, 0, tc.temp), "temp=%v", tc.temp)
	}
}

func TestWaterGoalMonotonic(t *testing.T) {
	temps := []float64{0, 26, 31}
	for _, temp := range temps {
		prev := -1.0
		for w := 0.0; w <= 200; w += 7.5 {
			got := WaterGoalML(w, 45, temp)
			assert.GreaterOrEqual(t, got, prev)
			prev = got
		}
		prev = -1.0
		for m := 0; m <= 300; m++ {
			got := WaterGoalML(70, m, temp)
			assert.GreaterOrEqual(t, got, prev)
			prev = got
		}
	}
	assert.LessOrEqual(t, WaterGoalML(70, 45, 20), WaterGoalML(70, 45, 27))
	assert.LessOrEqual(t, WaterGoalML(70, 45, 27), WaterGoalML(70, 45, 33))
}

func TestPALBands(t *testing.T) {
	cases := map[int]float64{
		0:   1.2,
		30:  1.2,
		31:  1.375,
		60:  1.375,
		61:  1.55,
		90:  1.55,
		120: 1.725,
		121: 1.9,
		600: 1.9,
	}
	for minutes, want := range cases {
		assert.Equal(t, want, PAL(minutes), "minutes=%d", minutes)
	}
}

func TestCalorieGoalScenario(t *testing.T) {
	assert.InDelta(t, 1648.75, BMR(70, 175, 30, model.SexMale), 1e-9)
	assert.InDelta(t, 2267.03, CalorieGoalKcal(70, 175, 30, 45, model.SexMale), 0.01)
}

func TestCalorieGoalFemale(t *testing.T) {
	bmr := 10*60 + 6.25*165 - 5*25 - 161.0
	assert.InDelta(t, bmr, BMR(60, 165, 25, model.SexFemale), 1e-9)
	assert.InDelta(t, bmr*1.9, CalorieGoalKcal(60, 165, 25, 150, model.SexFemale), 1e-9)
}

func TestWorkoutArithmetic(t *testing.T) {
	met, known := METFor("  Бег ")
	assert.True(t, known)
	assert.Equal(t, 9.8, met)
	assert.InDelta(t, 360.15, BurnedKcal(met, 70, 30), 1e-9)
	assert.Equal(t, 200.0, WorkoutWaterBonusML(30))
	assert.InDelta(t, 300.0, WorkoutWaterBonusML(45), 1e-9)

	met, known = METFor("кроссфит")
	assert.False(t, known)
	assert.Equal(t, DefaultMET, met)

	assert.Equal(t, 78.0, PortionKcal(52, 150))
}
