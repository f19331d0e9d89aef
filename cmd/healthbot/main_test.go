package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbot/internal/config"
	"healthbot/internal/model"
	"healthbot/internal/repository"
	"healthbot/internal/service"
)

func TestOpenPersistenceSQLite(t *testing.T) {
	cfg := config.Config{StorageBackend: config.StorageSQLite, DatabaseURL: filepath.Join(t.TempDir(), "bot.db")}

	p, closeFn, err := openPersistence(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &repository.UserRepository{}, p)

	users, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestOpenPersistenceRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{StorageBackend: config.StorageRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Key: "users.json"}}

	p, closeFn, err := openPersistence(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &repository.RedisSnapshotRepository{}, p)
}

func TestOpenPersistenceRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := openPersistence(context.Background(), config.Config{StorageBackend: config.StorageRedis, Redis: config.RedisConfig{Addr: addr}})
	assert.Error(t, err)
}

func TestScheduleJobs(t *testing.T) {
	store, err := service.NewUserStore(context.Background(), nil)
	require.NoError(t, err)
	clock := service.FixedClock(time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC))
	noReports := func(context.Context) error { return nil }

	cfg := config.Config{RolloverTime: "00:00", ReportTime: "21:00"}
	scheduler := service.NewSchedulerService(time.UTC)
	jobs, err := scheduleJobs(scheduler, cfg, store, clock, noReports)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "rollover", jobs[0].name)
	assert.Equal(t, "reports", jobs[1].name)

	scheduler.Start()
	defer scheduler.Stop()
	logNextRuns(scheduler, jobs)
	assert.Equal(t, 0, scheduler.Next(jobs[0].id).Hour())
	assert.Equal(t, 21, scheduler.Next(jobs[1].id).Hour())

	jobs, err = scheduleJobs(service.NewSchedulerService(time.UTC), config.Config{RolloverTime: "00:00"}, store, clock, noReports)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	cfg.ReportTime = "late"
	_, err = scheduleJobs(service.NewSchedulerService(time.UTC), cfg, store, clock, noReports)
	assert.Error(t, err)

	cfg.RolloverTime = "midnight"
	_, err = scheduleJobs(service.NewSchedulerService(time.UTC), cfg, store, clock, noReports)
	assert.Error(t, err)
}

func TestStoreRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{StorageBackend: config.StorageSQLite, DatabaseURL: filepath.Join(t.TempDir(), "bot.db")}

	p, closeFn, err := openPersistence(ctx, cfg)
	require.NoError(t, err)
	store, err := service.NewUserStore(ctx, p)
	require.NoError(t, err)
	store.Ensure(1, "2025-05-01")
	require.NoError(t, store.Update(1, func(u *model.User) error {
		u.LoggedWaterML = 700
		return nil
	}))
	assert.Equal(t, 1, store.RolloverAll("2025-05-02"))
	require.NoError(t, store.Save(ctx))
	closeFn()

	p, closeFn, err = openPersistence(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()
	reloaded, err := service.NewUserStore(ctx, p)
	require.NoError(t, err)
	u, ok := reloaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, 700.0, u.History["2025-05-01"].WaterML)
	assert.Zero(t, u.LoggedWaterML)
}
