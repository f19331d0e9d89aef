package service

import "strings"

// DefaultMET applies to workout labels missing from the table.
const DefaultMET = 6.0

var metValues = map[string]float64{
	"бег":                9.8,
	"ходьба":             3.5,
	"плавание":           8.0,
	"велосипед":          7.5,
	"йога":               3.0,
	"силовая тренировка": 6.0,
	"тренажер":           5.5,
}

// NormalizeWorkout folds a free-text workout label into a table key.
func NormalizeWorkout(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// METFor returns the metabolic equivalent of a workout label and whether it was known.
func METFor(label string) (float64, bool) {
	met, ok := metValues[NormalizeWorkout(label)]
	if !ok {
		return DefaultMET, false
	}
	return met, true
}

// BurnedKcal estimates energy spent during a workout.
func BurnedKcal(met, weightKG, durationMinutes float64) float64 {
	return met * 3.5 * weightKG / 200 * durationMinutes
}

// WorkoutWaterBonusML is the water goal increase for a workout: 200 ml per 30 minutes, prorated.
func WorkoutWaterBonusML(durationMinutes float64) float64 {
	return 200 * durationMinutes / 30
}

// PortionKcal converts a per-100g energy density into the energy of a portion.
func PortionKcal(kcalPer100g, grams float64) float64 {
	return kcalPer100g * grams / 100
}
