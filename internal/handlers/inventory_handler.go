package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/cache"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/service"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InventoryService is the slice of the core API the inventory endpoints need
type InventoryService interface {
	AddInventory(ctx context.Context, in service.AddInventoryInput) (*service.ItemResolution, error)
	UpdateInventory(ctx context.Context, id int64, partNumber, description string, quantity int) (*models.InventoryItem, error)
	DeleteInventory(ctx context.Context, id int64) error
	GetInventoryItem(ctx context.Context, id int64) (*service.ItemDetail, error)
	ListItemsForBox(ctx context.Context, code string) ([]service.ItemDetail, error)
	SearchItemsByPart(ctx context.Context, partNumber string) ([]service.ItemDetail, error)
}

type InventoryHandler struct {
	logger   *zap.Logger
	service  InventoryService
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewInventoryHandler(logger *zap.Logger, svc InventoryService, cacheClient cache.Cache, cacheTTL time.Duration) *InventoryHandler {
	return &InventoryHandler{
		logger:   logger,
		service:  svc,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
	}
}

// AddInventory handles POST /api/v1/inventory. The part and location
// must already be registered; the box is created on the fly when its
// code is new. Re-adding the same (box, part) pair returns the
// existing record untouched.
func (h *InventoryHandler) AddInventory(c *gin.Context) {
	var req AddInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	res, err := h.service.AddInventory(c.Request.Context(), service.AddInventoryInput{
		BoxCode:      req.BoxCode,
		PartNumber:   req.PartNumber,
		Description:  req.Description,
		LocationName: req.LocationName,
		Quantity:     *req.Quantity,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())

	status := http.StatusOK
	if res.ItemCreated {
		status = http.StatusCreated
	}
	c.JSON(status, AddInventoryResponse{
		InventoryResponse: InventoryResponse{
			InventoryID:  res.Item.ID,
			BoxCode:      res.Box.Code,
			PartNumber:   res.Item.PartNumber,
			Description:  res.Item.Description,
			LocationName: res.Location.Name,
			Quantity:     res.Item.Quantity,
		},
		Created:    res.ItemCreated,
		BoxCreated: res.BoxCreated,
	})
}

// UpdateInventory handles PUT /api/v1/inventory/:id
func (h *InventoryHandler) UpdateInventory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	item, err := h.service.UpdateInventory(c.Request.Context(), id, req.PartNumber, req.Description, *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"inventory_id": item.ID,
		"part_number":  item.PartNumber,
		"description":  item.Description,
		"quantity":     item.Quantity,
		"updated_at":   item.UpdatedAt,
	})
}

// GetInventoryItem handles GET /api/v1/inventory/:id
func (h *InventoryHandler) GetInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.service.GetInventoryItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse(detail))
}

// SearchInventory handles GET /api/v1/inventory/search?part_number=...
func (h *InventoryHandler) SearchInventory(c *gin.Context) {
	partNumber := c.Query("part_number")
	if partNumber == "" {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("missing query parameter", "part_number"))
		return
	}

	items, err := h.service.SearchItemsByPart(c.Request.Context(), partNumber)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, itemResponses(items))
}

// ListByBox handles GET /api/v1/inventory/by_box/:code
func (h *InventoryHandler) ListByBox(c *gin.Context) {
	code := c.Param("code")

	cacheKey := fmt.Sprintf("inventory:box:%s", code)
	if h.cache != nil {
		if data, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			var cached []InventoryResponse
			if json.Unmarshal(data, &cached) == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	items, err := h.service.ListItemsForBox(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := itemResponses(items)
	if h.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, data, h.cacheTTL); err != nil {
				h.logger.Warn("Failed to cache box inventory", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteInventory handles DELETE /api/v1/inventory/:id
func (h *InventoryHandler) DeleteInventory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteInventory(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, MessageResponse{Message: "inventory item deleted"})
}

func (h *InventoryHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPattern(ctx, "inventory:*"); err != nil {
		h.logger.Warn("Failed to invalidate inventory cache", zap.Error(err))
	}
}

func itemResponse(detail *service.ItemDetail) InventoryResponse {
	return InventoryResponse{
		InventoryID:  detail.Item.ID,
		BoxCode:      detail.BoxCode,
		PartNumber:   detail.Item.PartNumber,
		Description:  detail.Item.Description,
		LocationName: detail.LocationName,
		Quantity:     detail.Item.Quantity,
	}
}

func itemResponses(details []service.ItemDetail) []InventoryResponse {
	resp := make([]InventoryResponse, 0, len(details))
	for i := range details {
		resp = append(resp, itemResponse(&details[i]))
	}
	return resp
}
