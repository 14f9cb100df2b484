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

const locationsCacheKey = "locations:all"

// LocationService is the slice of the core API the location endpoints need
type LocationService interface {
	AddLocation(ctx context.Context, name, description string) (*models.Location, bool, error)
	DeleteLocation(ctx context.Context, id int64) error
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
	GetLocationByName(ctx context.Context, name string) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
}

type LocationHandler struct {
	logger   *zap.Logger
	service  LocationService
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewLocationHandler(logger *zap.Logger, svc LocationService, cacheClient cache.Cache, cacheTTL time.Duration) *LocationHandler {
	return &LocationHandler{
		logger:   logger,
		service:  svc,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
	}
}

// AddLocation handles POST /api/v1/locations
func (h *LocationHandler) AddLocation(c *gin.Context) {
	var req AddLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	loc, created, err := h.service.AddLocation(c.Request.Context(), req.LocationName, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, locationResponse(loc))
}

// ListLocations handles GET /api/v1/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	if h.cache != nil {
		if data, err := h.cache.Get(c.Request.Context(), locationsCacheKey); err == nil {
			var cached []LocationResponse
			if json.Unmarshal(data, &cached) == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	locations, err := h.service.ListLocations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]LocationResponse, 0, len(locations))
	for i := range locations {
		resp = append(resp, locationResponse(&locations[i]))
	}

	if h.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(c.Request.Context(), locationsCacheKey, data, h.cacheTTL); err != nil {
				h.logger.Warn("Failed to cache locations", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SearchLocation handles GET /api/v1/locations/search?location_name=...
func (h *LocationHandler) SearchLocation(c *gin.Context) {
	name := c.Query("location_name")
	if name == "" {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("missing query parameter", "location_name"))
		return
	}

	loc, err := h.service.GetLocationByName(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, locationResponse(loc))
}

// GetLocation handles GET /api/v1/locations/:id
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	loc, err := h.service.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, locationResponse(loc))
}

// DeleteLocation handles DELETE /api/v1/locations/:id
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLocation(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, MessageResponse{Message: "location deleted"})
}

func (h *LocationHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, locationsCacheKey); err != nil {
		h.logger.Warn("Failed to invalidate locations cache", zap.Error(err))
	}
}

func locationResponse(loc *models.Location) LocationResponse {
	return LocationResponse{
		LocationID:   loc.ID,
		LocationName: loc.Name,
		Description:  loc.Description,
	}
}
