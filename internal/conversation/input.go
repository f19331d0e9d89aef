package conversation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"healthbot/internal/model"
)

// Upper bounds of answers. They keep goals and daily totals finite.
const (
	maxWeightKG        = 500
	maxHeightCM        = 300
	maxAgeYears        = 150
	maxActivityMinutes = 1440
	maxWaterML         = 10000
	maxPortionGrams    = 10000
	maxWorkoutMinutes  = 1440
)

var (
	maleTokens   = []string{"муж", "м", "мужской", "male", "m"}
	femaleTokens = []string{"жен", "ж", "женский", "female", "f"}
)

func parseSex(text string) (model.Sex, error) {
	value := strings.ToLower(strings.TrimSpace(text))
	for _, token := range maleTokens {
		if value == token {
			return model.SexMale, nil
		}
	}
	for _, token := range femaleTokens {
		if value == token {
			return model.SexFemale, nil
		}
	}
	return model.SexUnset, fmt.Errorf("%w: sex %q", ErrValidation, text)
}

// parseNumber accepts a decimal comma and rejects NaN and infinities.
func parseNumber(text string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	value, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: number %q", ErrValidation, text)
	}
	return value, nil
}

// parsePositive accepts a number in (0, max].
func parsePositive(text string, max float64) (float64, error) {
	value, err := parseNumber(text)
	if err != nil {
		return 0, err
	}
	if value <= 0 || value > max {
		return 0, fmt.Errorf("%w: %q must be in (0, %g]", ErrValidation, text, max)
	}
	return value, nil
}

func parseInt(text string, min, max int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q", ErrValidation, text)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%w: %d must be in [%d, %d]", ErrValidation, value, min, max)
	}
	return value, nil
}

func parseText(text string) (string, error) {
	value := strings.TrimSpace(text)
	if value == "" {
		return "", fmt.Errorf("%w: empty text", ErrValidation)
	}
	return value, nil
}
