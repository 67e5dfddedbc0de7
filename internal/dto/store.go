package dto

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
)

// StoreItemDTO represents a store item in API responses
type StoreItemDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Cost        int64   `json:"cost"`
	ImageURL    *string `json:"image_url,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// PurchaseDTO represents a purchase in API responses
type PurchaseDTO struct {
	ID        string        `json:"id"`
	Cost      int64         `json:"cost"`
	CreatedAt time.Time     `json:"created_at"`
	Item      *StoreItemDTO `json:"item,omitempty"`
}

// BuyResponse is returned by POST /store/buy
type BuyResponse struct {
	Purchase PurchaseDTO `json:"purchase"`
	Balance  int64       `json:"balance"`
}

// BuyItemRequest is the body of POST /store/buy
type BuyItemRequest struct {
	ItemID string `json:"itemId" binding:"required,uuid"`
}

// CreateStoreItemRequest is the body of POST /store/items
type CreateStoreItemRequest struct {
	Name        string  `json:"name" binding:"required,notblank,max=150"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	Cost        int64   `json:"cost" binding:"required,gt=0"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url,max=500"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
}

// ToStoreItemDTO converts a StoreItem model to StoreItemDTO
func ToStoreItemDTO(item models.StoreItem) StoreItemDTO {
	return StoreItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Cost:        item.Cost,
		ImageURL:    item.ImageURL,
		Category:    item.Category,
	}
}

// ToPurchaseDTO converts a Purchase model to PurchaseDTO
func ToPurchaseDTO(purchase models.Purchase) PurchaseDTO {
	dto := PurchaseDTO{
		ID:        purchase.ID,
		Cost:      purchase.Cost,
		CreatedAt: purchase.CreatedAt,
	}

	// Include item if preloaded
	if purchase.Item.ID != "" {
		item := ToStoreItemDTO(purchase.Item)
		dto.Item = &item
	}

	return dto
}
