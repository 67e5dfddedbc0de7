package services

import (
	"context"
	"time"

	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/utils"
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank        int
	UserID      string
	DisplayName string
	AvatarURL   string
	TierName    string
	Score       int64
}

// LeaderboardPage is a page of ranked users.
type LeaderboardPage struct {
	Entries []LeaderboardEntry
	Page    int
	Limit   int
	Total   int64
}

// LeaderboardService ranks users by score.
type LeaderboardService struct {
	repo     repository.LeaderboardRepository
	projects *ProjectService
	now      func() time.Time
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(repo repository.LeaderboardRepository, projects *ProjectService) *LeaderboardService {
	return &LeaderboardService{
		repo:     repo,
		projects: projects,
		now:      time.Now,
	}
}

// GetGlobalLeaderboard ranks all users by lifetime points.
func (s *LeaderboardService) GetGlobalLeaderboard(ctx context.Context, page, limit int) (*LeaderboardPage, error) {
	params := utils.NewPaginationParams(page, limit)

	rows, total, err := s.repo.Global(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, wrapInternal("Failed to load leaderboard", err)
	}
	return toPage(rows, params, total), nil
}

// GetProjectLeaderboard ranks a project's members by points earned in it.
func (s *LeaderboardService) GetProjectLeaderboard(ctx context.Context, projectID string, page, limit int) (*LeaderboardPage, error) {
	if err := s.projects.Exists(ctx, projectID); err != nil {
		return nil, err
	}

	params := utils.NewPaginationParams(page, limit)

	rows, total, err := s.repo.Project(ctx, projectID, params.Offset, params.Limit)
	if err != nil {
		return nil, wrapInternal("Failed to load leaderboard", err)
	}
	return toPage(rows, params, total), nil
}

// GetWeeklyLeaderboard ranks all users by points earned since Monday 00:00.
func (s *LeaderboardService) GetWeeklyLeaderboard(ctx context.Context, page, limit int) (*LeaderboardPage, error) {
	params := utils.NewPaginationParams(page, limit)

	rows, total, err := s.repo.Since(ctx, WeekStart(s.now()), params.Offset, params.Limit)
	if err != nil {
		return nil, wrapInternal("Failed to load leaderboard", err)
	}
	return toPage(rows, params, total), nil
}

// WeekStart returns Monday 00:00 of the ISO week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

func toPage(rows []repository.LeaderboardRow, params utils.PaginationParams, total int64) *LeaderboardPage {
	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			Rank:        params.Offset + i + 1,
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			AvatarURL:   row.AvatarURL,
			TierName:    row.TierName,
			Score:       row.Score,
		}
	}

	return &LeaderboardPage{
		Entries: entries,
		Page:    params.Page,
		Limit:   params.Limit,
		Total:   total,
	}
}
