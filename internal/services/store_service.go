package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yukikurage/taskquest-api/internal/logger"
	"github.com/yukikurage/taskquest-api/internal/metrics"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StoreService sells store items for earned balance.
type StoreService struct {
	storeRepo repository.StoreRepository
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewStoreService creates a new StoreService.
func NewStoreService(storeRepo repository.StoreRepository, log *zap.Logger) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		log:       log,
	}
}

// UseMetrics reports purchases to m.
func (s *StoreService) UseMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// ListItems returns the purchasable items.
func (s *StoreService) ListItems(ctx context.Context) ([]models.StoreItem, error) {
	items, err := s.storeRepo.ListActiveItems(ctx)
	if err != nil {
		return nil, wrapInternal("Failed to list store items", err)
	}
	return items, nil
}

// CreateItemInput represents a new store item.
type CreateItemInput struct {
	Name        string
	Description string
	Cost        int64
	ImageURL    *string
	Category    *string
}

// CreateItem adds an item to the store.
func (s *StoreService) CreateItem(ctx context.Context, input CreateItemInput) (*models.StoreItem, error) {
	item := &models.StoreItem{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Cost:        input.Cost,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		Active:      true,
	}

	if err := s.storeRepo.CreateItem(ctx, item); err != nil {
		return nil, wrapInternal("Failed to create store item", err)
	}
	return item, nil
}

// Buy debits the user's balance and records the purchase. It returns the
// purchase and the remaining balance.
func (s *StoreService) Buy(ctx context.Context, userID, itemID string) (*models.Purchase, int64, error) {
	item, err := s.storeRepo.FindActiveItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrItemNotFound
		}
		return nil, 0, wrapInternal("Failed to find store item", err)
	}

	purchase, balance, err := s.storeRepo.Purchase(ctx, userID, item)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, 0, ErrInsufficientFunds
		}
		return nil, 0, wrapInternal("Failed to complete purchase", err)
	}

	s.metrics.RecordPurchase()
	logger.FromContext(ctx, s.log).Info("store purchase",
		zap.String("user_id", userID),
		zap.String("item_id", item.ID),
		zap.Int64("cost", item.Cost),
	)
	return purchase, balance, nil
}

// ListPurchases returns the user's purchases, newest first.
func (s *StoreService) ListPurchases(ctx context.Context, userID string) ([]models.Purchase, error) {
	purchases, err := s.storeRepo.ListPurchases(ctx, userID)
	if err != nil {
		return nil, wrapInternal("Failed to list purchases", err)
	}
	return purchases, nil
}
