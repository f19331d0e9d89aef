// Package conversation drives the per-user dialogues: profile setup, water, food
// and workout logging. One dialogue per user is active at a time and every step
// of one user runs under that user's lock.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"healthbot/internal/metrics"
	"healthbot/internal/model"
	"healthbot/internal/service"
)

// FoodCandidatesLimit caps the number of food lookup results offered.
const FoodCandidatesLimit = 5

// TemperatureLookup returns the current temperature of a city in °C.
type TemperatureLookup interface {
	Temperature(ctx context.Context, city string) (float64, error)
}

// FoodSearcher looks up food items by free-text query.
type FoodSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.FoodItem, error)
}

// Choice is an option the user picks with a selection event.
type Choice struct {
	Index int
	Label string
}

// Reply is what the transport should show. An empty Text means nothing to send.
type Reply struct {
	Text    string
	Choices []Choice
	// Done is set when the reply closes a dialogue.
	Done bool
}

func (r Reply) Empty() bool { return r.Text == "" }

// Machine keeps the dialogue state of every user.
type Machine struct {
	store   *service.UserStore
	clock   service.Clock
	weather TemperatureLookup
	food    FoodSearcher

	mu     sync.Mutex
	locks  map[int64]*sync.Mutex
	states map[int64]State
}

func NewMachine(store *service.UserStore, clock service.Clock, weather TemperatureLookup, food FoodSearcher) *Machine {
	return &Machine{
		store:   store,
		clock:   clock,
		weather: weather,
		food:    food,
		locks:   make(map[int64]*sync.Mutex),
		states:  make(map[int64]State),
	}
}

// State returns the current dialogue state of the user.
func (m *Machine) State(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[userID]; ok {
		return st
	}
	return Idle{}
}

// Register creates an empty record for a new user.
func (m *Machine) Register(ctx context.Context, userID int64) bool {
	defer m.lock(userID)()
	created := m.store.Ensure(userID, m.clock.Today())
	if created {
		log.Printf("[info] user registered id=%d", userID)
		m.store.SaveOrLog(ctx)
	}
	return created
}

// Begin starts a dialogue, dropping any active one. For FlowWater a non-empty
// args is handled as the first answer.
func (m *Machine) Begin(ctx context.Context, userID int64, flow Flow, args string) (Reply, error) {
	defer m.lock(userID)()

	switch flow {
	case FlowProfile:
		if m.store.Ensure(userID, m.clock.Today()) {
			m.store.SaveOrLog(ctx)
		}
		m.setState(userID, ProfileSetup{Step: ProfileSex})
		return Reply{Text: msgAskSex}, nil
	case FlowWater, FlowFood, FlowWorkout:
	default:
		return Reply{}, fmt.Errorf("unknown flow %q", flow)
	}

	if err := m.requireProfile(ctx, userID); err != nil {
		m.clearState(userID)
		return Reply{Text: msgNeedProfile}, err
	}

	log.Printf("[info] start %s flow user=%d", flow, userID)
	switch flow {
	case FlowWater:
		m.setState(userID, WaterLogging{})
		if args != "" {
			return m.stepWater(ctx, userID, args)
		}
		return Reply{Text: msgAskWater}, nil
	case FlowFood:
		m.setState(userID, FoodLogging{Step: FoodQuery})
		return Reply{Text: msgAskFood}, nil
	default:
		m.setState(userID, WorkoutLogging{Step: WorkoutType})
		return Reply{Text: msgAskWorkoutType}, nil
	}
}

// Text feeds a text message into the active dialogue. Without one it is a no-op.
func (m *Machine) Text(ctx context.Context, userID int64, text string) (Reply, error) {
	defer m.lock(userID)()

	switch st := m.State(userID).(type) {
	case ProfileSetup:
		return m.stepProfile(ctx, userID, st, text)
	case WaterLogging:
		return m.stepWater(ctx, userID, text)
	case FoodLogging:
		return m.stepFood(ctx, userID, st, text)
	case WorkoutLogging:
		return m.stepWorkout(ctx, userID, st, text)
	default:
		return Reply{}, nil
	}
}

// Select handles a choice among food candidates. Outside the food dialogue it is a no-op.
func (m *Machine) Select(ctx context.Context, userID int64, index int) (Reply, error) {
	defer m.lock(userID)()

	st, ok := m.State(userID).(FoodLogging)
	if !ok || st.Step == FoodQuery {
		return Reply{}, nil
	}
	return m.selectFood(userID, st, index)
}

// Cancel drops the active dialogue and reports whether there was one.
func (m *Machine) Cancel(userID int64) bool {
	defer m.lock(userID)()
	active := m.State(userID).Flow() != FlowNone
	m.clearState(userID)
	return active
}

// requireProfile checks the precondition and rolls the day over.
func (m *Machine) requireProfile(ctx context.Context, userID int64) error {
	rolled := false
	err := m.store.Update(userID, func(u *model.User) error {
		if !u.HasProfile() {
			return ErrNoProfile
		}
		rolled = service.EnsureCurrent(u, m.clock.Today())
		return nil
	})
	if errors.Is(err, service.ErrUserNotFound) {
		err = ErrNoProfile
	}
	if err != nil {
		return err
	}
	if rolled {
		m.store.SaveOrLog(ctx)
	}
	return nil
}

// commit mutates the record after a rollover, saves, and closes the dialogue.
// A result with a non-finite number is dropped and the record is left untouched.
func (m *Machine) commit(ctx context.Context, userID int64, flow Flow, fn func(u *model.User)) error {
	today := m.clock.Today()
	err := m.store.Update(userID, func(u *model.User) error {
		next := u.Clone()
		service.EnsureCurrent(next, today)
		fn(next)
		if !finite(next) {
			return fmt.Errorf("%w: non-finite %s result for user %d", ErrValidation, flow, userID)
		}
		*u = *next
		return nil
	})
	if err != nil {
		return err
	}
	m.clearState(userID)
	metrics.IncFlowCompleted(string(flow))
	m.store.SaveOrLog(ctx)
	return nil
}

func finite(u *model.User) bool {
	values := []float64{u.WaterGoalML, u.CalorieGoalKcal, u.LoggedWaterML, u.LoggedCaloriesKcal, u.BurnedCaloriesKcal, u.Weight()}
	if u.HeightCM != nil {
		values = append(values, *u.HeightCM)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (m *Machine) setState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st
}

func (m *Machine) clearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// lock acquires the user's lock and returns its release.
func (m *Machine) lock(userID int64) func() {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
