package conversation

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"healthbot/internal/metrics"
	"healthbot/internal/model"
	"healthbot/internal/service"
)

// DefaultTemperature is used when the weather lookup fails.
const DefaultTemperature = 25.0

const defaultWorkoutLabel = "тренировка"

func (m *Machine) stepProfile(ctx context.Context, userID int64, st ProfileSetup, text string) (Reply, error) {
	switch st.Step {
	case ProfileSex:
		sex, err := parseSex(text)
		if err != nil {
			return Reply{Text: msgBadSex}, err
		}
		st.Draft.Sex = sex
		st.Step = ProfileWeight
		m.setState(userID, st)
		return Reply{Text: msgAskWeight}, nil
	case ProfileWeight:
		weight, err := parsePositive(text, maxWeightKG)
		if err != nil {
			return Reply{Text: msgBadWeight}, err
		}
		st.Draft.WeightKG = weight
		st.Step = ProfileHeight
		m.setState(userID, st)
		return Reply{Text: msgAskHeight}, nil
	case ProfileHeight:
		height, err := parsePositive(text, maxHeightCM)
		if err != nil {
			return Reply{Text: msgBadHeight}, err
		}
		st.Draft.HeightCM = height
		st.Step = ProfileAge
		m.setState(userID, st)
		return Reply{Text: msgAskAge}, nil
	case ProfileAge:
		age, err := parseInt(text, 1, maxAgeYears)
		if err != nil {
			return Reply{Text: msgBadAge}, err
		}
		st.Draft.AgeYears = age
		st.Step = ProfileActivity
		m.setState(userID, st)
		return Reply{Text: msgAskActivity}, nil
	case ProfileActivity:
		activity, err := parseInt(text, 0, maxActivityMinutes)
		if err != nil {
			return Reply{Text: msgBadActivity}, err
		}
		st.Draft.ActivityMinutes = activity
		st.Step = ProfileCity
		m.setState(userID, st)
		return Reply{Text: msgAskCity}, nil
	case ProfileCity:
		city, err := parseText(text)
		if err != nil {
			return Reply{Text: msgBadCity}, err
		}
		return m.finishProfile(ctx, userID, st.Draft, city)
	default:
		m.clearState(userID)
		return Reply{Text: msgDialogReset, Done: true}, nil
	}
}

func (m *Machine) finishProfile(ctx context.Context, userID int64, draft ProfileDraft, city string) (Reply, error) {
	temp := m.temperature(ctx, city)
	waterGoal := service.WaterGoalML(draft.WeightKG, draft.ActivityMinutes, temp)
	calorieGoal := service.CalorieGoalKcal(draft.WeightKG, draft.HeightCM, draft.AgeYears, draft.ActivityMinutes, draft.Sex)

	err := m.commit(ctx, userID, FlowProfile, func(u *model.User) {
		weight, height, age := draft.WeightKG, draft.HeightCM, draft.AgeYears
		u.Sex = draft.Sex
		u.WeightKG = &weight
		u.HeightCM = &height
		u.AgeYears = &age
		u.ActivityMinutes = draft.ActivityMinutes
		u.City = city
		u.WaterGoalML = waterGoal
		u.CalorieGoalKcal = calorieGoal
	})
	if err != nil {
		m.clearState(userID)
		return Reply{Text: msgDialogReset, Done: true}, err
	}

	log.Printf("[info] profile set user=%d city=%q temp=%.1f water=%.0f kcal=%.0f", userID, city, temp, waterGoal, calorieGoal)
	return Reply{Text: fmt.Sprintf(msgProfileDone, waterGoal, calorieGoal), Done: true}, nil
}

func (m *Machine) temperature(ctx context.Context, city string) float64 {
	if m.weather == nil {
		return DefaultTemperature
	}
	temp, err := m.weather.Temperature(ctx, city)
	if err != nil {
		metrics.IncCollaboratorFailure("weather")
		log.Printf("[warn] temperature for %q: %v, using %.0f°C", city, err, DefaultTemperature)
		return DefaultTemperature
	}
	return temp
}

func (m *Machine) stepWater(ctx context.Context, userID int64, text string) (Reply, error) {
	amount, err := parsePositive(text, maxWaterML)
	if err != nil {
		return Reply{Text: msgBadWater}, err
	}

	var logged, left float64
	err = m.commit(ctx, userID, FlowWater, func(u *model.User) {
		u.LoggedWaterML += amount
		logged = u.LoggedWaterML
		left = math.Max(0, u.WaterGoalML-u.LoggedWaterML)
	})
	if err != nil {
		m.clearState(userID)
		return Reply{Text: msgDialogReset, Done: true}, err
	}
	return Reply{Text: fmt.Sprintf(msgWaterDone, amount, logged, left), Done: true}, nil
}

func (m *Machine) stepFood(ctx context.Context, userID int64, st FoodLogging, text string) (Reply, error) {
	if st.Step == FoodGrams {
		return m.finishFood(ctx, userID, st, text)
	}

	// Text while choosing is a new query.
	query, err := parseText(text)
	if err != nil {
		return Reply{Text: msgAskFood}, err
	}
	if m.food == nil {
		m.clearState(userID)
		return Reply{Text: msgFoodNotFound, Done: true}, fmt.Errorf("%w: food lookup unavailable", ErrNotFound)
	}

	items, err := m.food.Search(ctx, query, FoodCandidatesLimit)
	if err != nil {
		metrics.IncCollaboratorFailure("food")
		m.clearState(userID)
		return Reply{Text: msgFoodLookupFailed, Done: true}, fmt.Errorf("search food %q: %w", query, err)
	}
	if len(items) == 0 {
		m.clearState(userID)
		return Reply{Text: msgFoodNotFound, Done: true}, fmt.Errorf("%w: food %q", ErrNotFound, query)
	}
	if len(items) > FoodCandidatesLimit {
		items = items[:FoodCandidatesLimit]
	}

	m.setState(userID, FoodLogging{Step: FoodChoice, Candidates: items})
	choices := make([]Choice, 0, len(items))
	for i, item := range items {
		choices = append(choices, Choice{Index: i, Label: fmt.Sprintf("%s — %s ккал/100г", item.Name, formatKcal(item.KcalPer100g))})
	}
	return Reply{Text: msgChooseFood, Choices: choices}, nil
}

func (m *Machine) selectFood(userID int64, st FoodLogging, index int) (Reply, error) {
	if index < 0 || index >= len(st.Candidates) {
		return Reply{Text: msgBadChoice}, fmt.Errorf("%w: %d of %d", ErrSelection, index, len(st.Candidates))
	}
	st.Chosen = st.Candidates[index]
	st.Step = FoodGrams
	m.setState(userID, st)
	return Reply{Text: fmt.Sprintf(msgAskGrams, st.Chosen.Name, formatKcal(st.Chosen.KcalPer100g))}, nil
}

func (m *Machine) finishFood(ctx context.Context, userID int64, st FoodLogging, text string) (Reply, error) {
	grams, err := parsePositive(text, maxPortionGrams)
	if err != nil {
		return Reply{Text: msgBadGrams}, err
	}

	kcal := service.PortionKcal(st.Chosen.KcalPer100g, grams)
	err = m.commit(ctx, userID, FlowFood, func(u *model.User) {
		u.LoggedCaloriesKcal += kcal
	})
	if err != nil {
		m.clearState(userID)
		return Reply{Text: msgDialogReset, Done: true}, err
	}
	log.Printf("[info] food logged user=%d item=%q grams=%.0f kcal=%.1f", userID, st.Chosen.Name, grams, kcal)
	return Reply{Text: fmt.Sprintf(msgFoodDone, kcal), Done: true}, nil
}

func (m *Machine) stepWorkout(ctx context.Context, userID int64, st WorkoutLogging, text string) (Reply, error) {
	if st.Step == WorkoutType {
		label := service.NormalizeWorkout(text)
		if label == "" {
			label = defaultWorkoutLabel
		}
		met, _ := service.METFor(label)
		m.setState(userID, WorkoutLogging{Step: WorkoutDuration, Label: label, MET: met})
		return Reply{Text: msgAskDuration}, nil
	}

	duration, err := parsePositive(text, maxWorkoutMinutes)
	if err != nil {
		return Reply{Text: msgBadDuration}, err
	}

	bonus := service.WorkoutWaterBonusML(duration)
	var burned float64
	err = m.commit(ctx, userID, FlowWorkout, func(u *model.User) {
		burned = service.BurnedKcal(st.MET, u.Weight(), duration)
		u.BurnedCaloriesKcal += burned
		u.WaterGoalML += bonus
	})
	if err != nil {
		m.clearState(userID)
		return Reply{Text: msgDialogReset, Done: true}, err
	}
	return Reply{Text: fmt.Sprintf(msgWorkoutDone, capitalize(st.Label), duration, burned, bonus), Done: true}, nil
}

func formatKcal(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[:1])) + string(runes[1:])
}
