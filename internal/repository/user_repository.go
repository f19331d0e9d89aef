package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthbot/internal/model"
)

const upsertBatchSize = 200

// UserRepository persists the user mapping in SQL: one row per user and one per archived day.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Load returns every user with its history. An empty database gives an empty mapping.
func (r *UserRepository) Load(ctx context.Context) (map[int64]*model.User, error) {
	db := r.db.WithContext(ctx)

	var users []model.User
	if err := db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var entries []model.HistoryEntry
	if err := db.Order("user_id, day").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	result := make(map[int64]*model.User, len(users))
	for i := range users {
		u := users[i]
		u.History = make(map[model.Date]model.DaySnapshot)
		result[u.TelegramID] = &u
	}
	for _, e := range entries {
		u, ok := result[e.UserID]
		if !ok {
			continue
		}
		u.History[e.Day] = e.Snapshot()
	}
	return result, nil
}

// Save writes the whole mapping in one transaction. Rows are upserted, so an
// archived day written earlier is overwritten rather than duplicated.
func (r *UserRepository) Save(ctx context.Context, users map[int64]*model.User) error {
	if len(users) == 0 {
		return nil
	}

	rows := make([]model.User, 0, len(users))
	var entries []model.HistoryEntry
	for id, u := range users {
		row := *u
		row.TelegramID = id
		row.History = nil
		rows = append(rows, row)
		for day, snap := range u.History {
			entries = append(entries, model.HistoryEntry{
				UserID:       id,
				Day:          day,
				WaterML:      snap.WaterML,
				CaloriesKcal: snap.CaloriesKcal,
				BurnedKcal:   snap.BurnedKcal,
			})
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&rows, upsertBatchSize).Error; err != nil {
			return fmt.Errorf("upsert users: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"water_ml", "calories_kcal", "burned_kcal"}),
		}).CreateInBatches(&entries, upsertBatchSize).Error
		if err != nil {
			return fmt.Errorf("upsert history: %w", err)
		}
		return nil
	})
}
