package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/testutil"
)

func TestStreakService_ResetStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 6, 3, 0, 0, 0, time.Local)
	env.streaks.now = func() time.Time { return now }

	yesterday := time.Date(2024, 3, 5, 22, 0, 0, 0, time.Local)
	twoDaysAgo := time.Date(2024, 3, 4, 22, 0, 0, 0, time.Local)

	active := testutil.CreateUser(t, env.db, "active@example.com", func(u *models.User) {
		u.StreakDays = 4
		u.LastActiveAt = &yesterday
	})
	lapsed := testutil.CreateUser(t, env.db, "lapsed@example.com", func(u *models.User) {
		u.StreakDays = 9
		u.LastActiveAt = &twoDaysAgo
	})

	reset, err := env.streaks.ResetStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)

	got, err := env.userRepo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.StreakDays)

	got, err = env.userRepo.FindByID(ctx, lapsed.ID)
	require.NoError(t, err)
	assert.Zero(t, got.StreakDays)
}

func TestStreakService_ResetAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		testutil.CreateUser(t, env.db, email, func(u *models.User) {
			u.StreakDays = 3
			u.LastActiveAt = &now
		})
	}
	testutil.CreateUser(t, env.db, "idle@example.com")

	reset, err := env.streaks.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reset)

	var remaining int64
	require.NoError(t, env.db.Model(&models.User{}).Where("streak_days > 0").Count(&remaining).Error)
	assert.Zero(t, remaining)
}
