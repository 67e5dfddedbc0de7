package services

import (
	"context"

	"github.com/yukikurage/taskquest-api/internal/repository"
)

// StatsService exposes public platform counters.
type StatsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

// Summary returns user, project and task counts and total points.
func (s *StatsService) Summary(ctx context.Context) (*repository.Stats, error) {
	stats, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, wrapInternal("Failed to load stats", err)
	}
	return stats, nil
}
