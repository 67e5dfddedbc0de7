package services

import (
	"context"
	"time"

	"github.com/yukikurage/taskquest-api/internal/logger"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"go.uber.org/zap"
)

// StreakService maintains daily activity streaks.
type StreakService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewStreakService(userRepo repository.UserRepository, log *zap.Logger) *StreakService {
	return &StreakService{
		userRepo: userRepo,
		log:      log,
		now:      time.Now,
	}
}

// ResetStale zeroes the streak of every user with no activity since the
// start of yesterday, i.e. users whose streak can no longer be extended.
func (s *StreakService) ResetStale(ctx context.Context) (int64, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, -1)

	affected, err := s.userRepo.ResetStreaks(ctx, &cutoff)
	if err != nil {
		return 0, wrapInternal("Failed to reset streaks", err)
	}

	logger.FromContext(ctx, s.log).Info("reset stale streaks", zap.Int64("users", affected))
	return affected, nil
}

// ResetAll zeroes every streak.
func (s *StreakService) ResetAll(ctx context.Context) (int64, error) {
	affected, err := s.userRepo.ResetStreaks(ctx, nil)
	if err != nil {
		return 0, wrapInternal("Failed to reset streaks", err)
	}

	logger.FromContext(ctx, s.log).Info("reset all streaks", zap.Int64("users", affected))
	return affected, nil
}
