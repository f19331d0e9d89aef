package conversation

import "healthbot/internal/model"

// Flow names a multi-step dialogue.
type Flow string

const (
	FlowNone    Flow = "none"
	FlowProfile Flow = "profile"
	FlowWater   Flow = "water"
	FlowFood    Flow = "food"
	FlowWorkout Flow = "workout"
)

// State is the dialogue position of one user. The concrete types are Idle,
// ProfileSetup, WaterLogging, FoodLogging and WorkoutLogging.
type State interface {
	Flow() Flow
}

// Idle means no dialogue is active.
type Idle struct{}

func (Idle) Flow() Flow { return FlowNone }

type ProfileStep int

const (
	ProfileSex ProfileStep = iota
	ProfileWeight
	ProfileHeight
	ProfileAge
	ProfileActivity
	ProfileCity
)

// ProfileDraft holds the answers collected so far.
type ProfileDraft struct {
	Sex             model.Sex
	WeightKG        float64
	HeightCM        float64
	AgeYears        int
	ActivityMinutes int
}

type ProfileSetup struct {
	Step  ProfileStep
	Draft ProfileDraft
}

func (ProfileSetup) Flow() Flow { return FlowProfile }

// WaterLogging waits for a single amount.
type WaterLogging struct{}

func (WaterLogging) Flow() Flow { return FlowWater }

type FoodStep int

const (
	FoodQuery FoodStep = iota
	FoodChoice
	FoodGrams
)

type FoodLogging struct {
	Step       FoodStep
	Candidates []model.FoodItem
	Chosen     model.FoodItem
}

func (FoodLogging) Flow() Flow { return FlowFood }

type WorkoutStep int

const (
	WorkoutType WorkoutStep = iota
	WorkoutDuration
)

type WorkoutLogging struct {
	Step  WorkoutStep
	Label string
	MET   float64
}

func (WorkoutLogging) Flow() Flow { return FlowWorkout }
