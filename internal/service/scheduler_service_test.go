package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("00:00")
	require.NoError(t, err)
	assert.Equal(t, "0 0 0 * * *", spec)

	spec, err = buildDailySpec(" 21:30")
	require.NoError(t, err)
	assert.Equal(t, "0 30 21 * * *", spec)

	for _, bad := range []string{"", "24:00", "12:60", "noon", "1:2:3"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestScheduleDailyComputesNextRun(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	id, err := s.ScheduleDaily("03:15", func() {})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	next := s.Next(id)
	require.False(t, next.IsZero())
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 15, next.Minute())
}
