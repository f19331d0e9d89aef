package service

import "healthbot/internal/model"

const (
	waterPerKG          = 30.0
	waterPerActiveBlock = 500.0
	activeBlockMinutes  = 30
	hotWeatherBonus     = 1000.0
	warmWeatherBonus    = 500.0
	hotThreshold        = 30.0
	warmThreshold       = 25.0
)

// palBands maps an inclusive upper bound of daily activity minutes to a PAL multiplier.
var palBands = []struct {
	maxMinutes int
	pal        float64
}{
	{30, 1.2},
	{60, 1.375},
	{90, 1.55},
	{120, 1.725},
}

const palMax = 1.9

// WaterGoalML returns the daily water target in millilitres.
func WaterGoalML(weightKG float64, activityMinutes int, temperatureC float64) float64 {
	water := weightKG * waterPerKG
	if activityMinutes > 0 {
		water += float64(activityMinutes/activeBlockMinutes) * waterPerActiveBlock
	}

	switch {
	case temperatureC > hotThreshold:
		water += hotWeatherBonus
	case temperatureC > warmThreshold:
		water += warmWeatherBonus
	}
	return water
}

// BMR is the Mifflin-St Jeor basal metabolic rate. Anything but female uses the male constant.
func BMR(weightKG, heightCM float64, ageYears int, sex model.Sex) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(ageYears)
	if sex == model.SexFemale {
		return bmr - 161
	}
	return bmr + 5
}

// PAL picks the physical activity level for the given daily minutes.
func PAL(activityMinutes int) float64 {
	for _, band := range palBands {
		if activityMinutes <= band.maxMinutes {
			return band.pal
		}
	}
	return palMax
}

// CalorieGoalKcal returns the daily energy target.
func CalorieGoalKcal(weightKG, heightCM float64, ageYears, activityMinutes int, sex model.Sex) float64 {
	return BMR(weightKG, heightCM, ageYears, sex) * PAL(activityMinutes)
}
