package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/testutil"
)

func TestWeekStart(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday morning", time.Date(2024, 3, 4, 0, 0, 1, 0, loc), time.Date(2024, 3, 4, 0, 0, 0, 0, loc)},
		{"wednesday", time.Date(2024, 3, 6, 15, 30, 0, 0, loc), time.Date(2024, 3, 4, 0, 0, 0, 0, loc)},
		{"sunday night", time.Date(2024, 3, 10, 23, 59, 0, 0, loc), time.Date(2024, 3, 4, 0, 0, 0, 0, loc)},
		{"across month", time.Date(2024, 5, 1, 12, 0, 0, 0, loc), time.Date(2024, 4, 29, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.in)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestLeaderboardService_GlobalPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		points := int64(i * 10)
		testutil.CreateUser(t, env.db, fmt.Sprintf("user%02d@example.com", i), func(u *models.User) {
			u.Points = points
		})
	}

	page, err := env.leaderboard.GetGlobalLeaderboard(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, int64(25), page.Total)
	require.Len(t, page.Entries, 10)
	assert.Equal(t, 11, page.Entries[0].Rank)
	assert.Equal(t, int64(150), page.Entries[0].Score)
	assert.Equal(t, 20, page.Entries[9].Rank)
	assert.NotEmpty(t, page.Entries[0].TierName)

	page, err = env.leaderboard.GetGlobalLeaderboard(ctx, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 1, page.Entries[0].Rank)
	assert.Equal(t, int64(250), page.Entries[0].Score)
}

func TestLeaderboardService_HugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "solo@example.com", func(u *models.User) {
		u.Points = 10
	})

	page, err := env.leaderboard.GetGlobalLeaderboard(context.Background(), math.MaxInt, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Empty(t, page.Entries)
	assert.Positive(t, page.Page)
}

func TestLeaderboardService_Project(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner@example.com")
	member := testutil.CreateUser(t, env.db, "member@example.com")
	project := testutil.CreateProject(t, env.db, "Board", owner)
	testutil.AddMember(t, env.db, project, member, models.ProjectRoleMember)
	testutil.CreatePointEvent(t, env.db, member, &project.ID, 40, time.Now())

	page, err := env.leaderboard.GetProjectLeaderboard(ctx, project.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, member.ID, page.Entries[0].UserID)
	assert.Equal(t, int64(40), page.Entries[0].Score)
	assert.Equal(t, int64(0), page.Entries[1].Score)

	_, err = env.leaderboard.GetProjectLeaderboard(ctx, "00000000-0000-0000-0000-000000000000", 1, 10)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestLeaderboardService_Weekly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.Local)
	env.leaderboard.now = func() time.Time { return now }

	steady := testutil.CreateUser(t, env.db, "steady@example.com")
	veteran := testutil.CreateUser(t, env.db, "veteran@example.com")
	testutil.CreatePointEvent(t, env.db, steady, nil, 30, now.Add(-time.Hour))
	testutil.CreatePointEvent(t, env.db, veteran, nil, 500, now.AddDate(0, 0, -7))
	testutil.CreatePointEvent(t, env.db, veteran, nil, 10, WeekStart(now).Add(time.Minute))

	page, err := env.leaderboard.GetWeeklyLeaderboard(ctx, 1, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(page.Entries), 2)
	assert.Equal(t, steady.ID, page.Entries[0].UserID)
	assert.Equal(t, int64(30), page.Entries[0].Score)
	assert.Equal(t, veteran.ID, page.Entries[1].UserID)
	assert.Equal(t, int64(10), page.Entries[1].Score)
}
