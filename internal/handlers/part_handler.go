package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/cache"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const partsCacheKey = "parts:all"

// PartService is the slice of the core API the part endpoints need
type PartService interface {
	AddPart(ctx context.Context, partNumber, description string) (*models.Part, bool, error)
	DeletePart(ctx context.Context, id int64) error
	GetPart(ctx context.Context, id int64) (*models.Part, error)
	GetPartByNumber(ctx context.Context, partNumber string) (*models.Part, error)
	ListParts(ctx context.Context) ([]models.Part, error)
}

type PartHandler struct {
	logger   *zap.Logger
	service  PartService
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewPartHandler(logger *zap.Logger, svc PartService, cacheClient cache.Cache, cacheTTL time.Duration) *PartHandler {
	return &PartHandler{
		logger:   logger,
		service:  svc,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
	}
}

// AddPart handles POST /api/v1/parts
func (h *PartHandler) AddPart(c *gin.Context) {
	var req AddPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	part, created, err := h.service.AddPart(c.Request.Context(), req.PartNumber, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, partResponse(part))
}

// ListParts handles GET /api/v1/parts
func (h *PartHandler) ListParts(c *gin.Context) {
	if h.cache != nil {
		if data, err := h.cache.Get(c.Request.Context(), partsCacheKey); err == nil {
			var cached []PartResponse
			if json.Unmarshal(data, &cached) == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	parts, err := h.service.ListParts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]PartResponse, 0, len(parts))
	for i := range parts {
		resp = append(resp, partResponse(&parts[i]))
	}

	if h.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(c.Request.Context(), partsCacheKey, data, h.cacheTTL); err != nil {
				h.logger.Warn("Failed to cache parts", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SearchPart handles GET /api/v1/parts/search?part_number=...
func (h *PartHandler) SearchPart(c *gin.Context) {
	partNumber := c.Query("part_number")
	if partNumber == "" {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("missing query parameter", "part_number"))
		return
	}

	part, err := h.service.GetPartByNumber(c.Request.Context(), partNumber)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, partResponse(part))
}

// GetPart handles GET /api/v1/parts/:id
func (h *PartHandler) GetPart(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	part, err := h.service.GetPart(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, partResponse(part))
}

// DeletePart handles DELETE /api/v1/parts/:id
func (h *PartHandler) DeletePart(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePart(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, MessageResponse{Message: "part deleted"})
}

func (h *PartHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, partsCacheKey); err != nil {
		h.logger.Warn("Failed to invalidate parts cache", zap.Error(err))
	}
}

func partResponse(part *models.Part) PartResponse {
	return PartResponse{
		PartID:      part.ID,
		PartNumber:  part.PartNumber,
		Description: part.Description,
	}
}
