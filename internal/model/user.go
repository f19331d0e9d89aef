package model

import "time"

// Sex is used to pick the Mifflin-St Jeor constant.
type Sex string

const (
	SexUnset  Sex = ""
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// User stores the profile, daily accumulators and archived days of a Telegram user.
type User struct {
	TelegramID         int64 `gorm:"primaryKey;autoIncrement:false"`
	Sex                Sex
	WeightKG           *float64
	HeightCM           *float64
	AgeYears           *int
	ActivityMinutes    int
	City               string
	WaterGoalML        float64
	CalorieGoalKcal    float64
	LoggedWaterML      float64
	LoggedCaloriesKcal float64
	BurnedCaloriesKcal float64
	LastUpdateDate     Date                 `gorm:"index"`
	History            map[Date]DaySnapshot `gorm:"-"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewUser returns an empty record whose day starts at today.
func NewUser(telegramID int64, today Date) *User {
	return &User{
		TelegramID:     telegramID,
		LastUpdateDate: today,
		History:        make(map[Date]DaySnapshot),
	}
}

// HasProfile reports whether the profile flow has been completed at least once.
func (u *User) HasProfile() bool {
	return u != nil && u.WeightKG != nil && u.HeightCM != nil && u.AgeYears != nil
}

// Weight returns the profile weight or 0 when unset.
func (u *User) Weight() float64 {
	if u.WeightKG == nil {
		return 0
	}
	return *u.WeightKG
}

// Clone returns a deep copy so callers can read a record outside its lock.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.WeightKG != nil {
		v := *u.WeightKG
		c.WeightKG = &v
	}
	if u.HeightCM != nil {
		v := *u.HeightCM
		c.HeightCM = &v
	}
	if u.AgeYears != nil {
		v := *u.AgeYears
		c.AgeYears = &v
	}
	c.History = make(map[Date]DaySnapshot, len(u.History))
	for d, s := range u.History {
		c.History[d] = s
	}
	return &c
}
