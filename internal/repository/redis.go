package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"healthbot/internal/config"
	"healthbot/internal/model"
)

// NewRedisClient builds a client from the configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping checks the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// RedisSnapshotRepository keeps the whole mapping as one JSON document under a
// single key, keyed by the decimal user id.
type RedisSnapshotRepository struct {
	client *redis.Client
	key    string
}

func NewRedisSnapshotRepository(client *redis.Client, key string) *RedisSnapshotRepository {
	if key == "" {
		key = config.DefaultRedisKey
	}
	return &RedisSnapshotRepository{client: client, key: key}
}

type daySnapshotJSON struct {
	Water    float64 `json:"water"`
	Calories float64 `json:"calories"`
	Burned   float64 `json:"burned"`
}

type userJSON struct {
	Sex            string                     `json:"sex,omitempty"`
	Weight         *float64                   `json:"weight,omitempty"`
	Height         *float64                   `json:"height,omitempty"`
	Age            *int                       `json:"age,omitempty"`
	Activity       int                        `json:"activity"`
	City           string                     `json:"city,omitempty"`
	WaterGoal      float64                    `json:"water_goal"`
	CalorieGoal    float64                    `json:"calorie_goal"`
	LoggedWater    float64                    `json:"logged_water"`
	LoggedCalories float64                    `json:"logged_calories"`
	BurnedCalories float64                    `json:"burned_calories"`
	LastUpdate     string                     `json:"last_update"`
	History        map[string]daySnapshotJSON `json:"history"`
}

// Load returns an empty mapping when the key does not exist.
func (r *RedisSnapshotRepository) Load(ctx context.Context) (map[int64]*model.User, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[int64]*model.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}

	var doc map[string]userJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}

	users := make(map[int64]*model.User, len(doc))
	for key, rec := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode %s: user id %q: %w", r.key, key, err)
		}
		u, err := rec.toModel(id)
		if err != nil {
			return nil, fmt.Errorf("decode %s: user %d: %w", r.key, id, err)
		}
		users[id] = u
	}
	return users, nil
}

// Save overwrites the document with the full mapping.
func (r *RedisSnapshotRepository) Save(ctx context.Context, users map[int64]*model.User) error {
	doc := make(map[string]userJSON, len(users))
	for id, u := range users {
		doc[strconv.FormatInt(id, 10)] = fromModel(u)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

func fromModel(u *model.User) userJSON {
	rec := userJSON{
		Sex:            string(u.Sex),
		Weight:         u.WeightKG,
		Height:         u.HeightCM,
		Age:            u.AgeYears,
		Activity:       u.ActivityMinutes,
		City:           u.City,
		WaterGoal:      u.WaterGoalML,
		CalorieGoal:    u.CalorieGoalKcal,
		LoggedWater:    u.LoggedWaterML,
		LoggedCalories: u.LoggedCaloriesKcal,
		BurnedCalories: u.BurnedCaloriesKcal,
		LastUpdate:     u.LastUpdateDate.String(),
		History:        make(map[string]daySnapshotJSON, len(u.History)),
	}
	for day, snap := range u.History {
		rec.History[day.String()] = daySnapshotJSON{Water: snap.WaterML, Calories: snap.CaloriesKcal, Burned: snap.BurnedKcal}
	}
	return rec
}

// toModel rejects malformed dates. An empty last_update is kept as the zero date.
func (rec userJSON) toModel(id int64) (*model.User, error) {
	var lastUpdate model.Date
	if rec.LastUpdate != "" {
		d, err := model.ParseDate(rec.LastUpdate)
		if err != nil {
			return nil, fmt.Errorf("last_update: %w", err)
		}
		lastUpdate = d
	}

	u := model.NewUser(id, lastUpdate)
	u.Sex = model.Sex(rec.Sex)
	u.WeightKG = rec.Weight
	u.HeightCM = rec.Height
	u.AgeYears = rec.Age
	u.ActivityMinutes = rec.Activity
	u.City = rec.City
	u.WaterGoalML = rec.WaterGoal
	u.CalorieGoalKcal = rec.CalorieGoal
	u.LoggedWaterML = rec.LoggedWater
	u.LoggedCaloriesKcal = rec.LoggedCalories
	u.BurnedCaloriesKcal = rec.BurnedCalories
	for day, snap := range rec.History {
		d, err := model.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("history day: %w", err)
		}
		u.History[d] = model.DaySnapshot{WaterML: snap.Water, CaloriesKcal: snap.Calories, BurnedKcal: snap.Burned}
	}
	return u, nil
}
