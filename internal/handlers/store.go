package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/validation"
)

// StoreHandler serves the points store.
type StoreHandler struct {
	storeService *services.StoreService
}

func NewStoreHandler(storeService *services.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// ListItems returns the purchasable items.
func (h *StoreHandler) ListItems(c *gin.Context) {
	items, err := h.storeService.ListItems(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	dtos := make([]dto.StoreItemDTO, len(items))
	for i, item := range items {
		dtos[i] = dto.ToStoreItemDTO(item)
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos})
}

// CreateItem adds an item to the store.
func (h *StoreHandler) CreateItem(c *gin.Context) {
	req := validation.BodyFrom[dto.CreateStoreItemRequest](c)

	item, err := h.storeService.CreateItem(c.Request.Context(), services.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToStoreItemDTO(*item))
}

// Buy spends the caller's balance on an item.
func (h *StoreHandler) Buy(c *gin.Context) {
	req := validation.BodyFrom[dto.BuyItemRequest](c)

	purchase, balance, err := h.storeService.Buy(c.Request.Context(), middleware.MustAuth(c).UserID, req.ItemID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BuyResponse{
		Purchase: dto.ToPurchaseDTO(*purchase),
		Balance:  balance,
	})
}

// ListPurchases returns the caller's purchases.
func (h *StoreHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.storeService.ListPurchases(c.Request.Context(), middleware.MustAuth(c).UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	dtos := make([]dto.PurchaseDTO, len(purchases))
	for i, purchase := range purchases {
		dtos[i] = dto.ToPurchaseDTO(purchase)
	}
	c.JSON(http.StatusOK, gin.H{"purchases": dtos})
}
