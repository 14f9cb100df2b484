package handlers

import (
	"context"
	"net/http"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/cache"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/service"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BoxService is the slice of the core API the box endpoints need
type BoxService interface {
	AddBox(ctx context.Context, code, locationName string) (*service.BoxResolution, error)
	DeleteBox(ctx context.Context, id int64) error
	GetBox(ctx context.Context, id int64) (*service.BoxDetail, error)
	GetBoxByCode(ctx context.Context, code string) (*service.BoxDetail, error)
	ListBoxes(ctx context.Context) ([]service.BoxDetail, error)
}

type BoxHandler struct {
	logger  *zap.Logger
	service BoxService
	cache   cache.Cache
}

func NewBoxHandler(logger *zap.Logger, svc BoxService, cacheClient cache.Cache) *BoxHandler {
	return &BoxHandler{
		logger:  logger,
		service: svc,
		cache:   cacheClient,
	}
}

// AddBox handles POST /api/v1/boxes
func (h *BoxHandler) AddBox(c *gin.Context) {
	var req AddBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	res, err := h.service.AddBox(c.Request.Context(), req.Code, req.LocationName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, BoxResponse{
		BoxID:        res.Box.ID,
		Code:         res.Box.Code,
		LocationName: res.Location.Name,
	})
}

// ListBoxes handles GET /api/v1/boxes
func (h *BoxHandler) ListBoxes(c *gin.Context) {
	boxes, err := h.service.ListBoxes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]BoxResponse, 0, len(boxes))
	for _, bd := range boxes {
		resp = append(resp, boxResponse(&bd))
	}
	c.JSON(http.StatusOK, resp)
}

// SearchBox handles GET /api/v1/boxes/search?code=...
func (h *BoxHandler) SearchBox(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("missing query parameter", "code"))
		return
	}

	bd, err := h.service.GetBoxByCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, boxResponse(bd))
}

// GetBox handles GET /api/v1/boxes/:id
func (h *BoxHandler) GetBox(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	bd, err := h.service.GetBox(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, boxResponse(bd))
}

// DeleteBox handles DELETE /api/v1/boxes/:id. Items inside the box go
// with it.
func (h *BoxHandler) DeleteBox(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBox(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, MessageResponse{Message: "box deleted"})
}

func (h *BoxHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPattern(ctx, "inventory:*"); err != nil {
		h.logger.Warn("Failed to invalidate inventory cache", zap.Error(err))
	}
}

func boxResponse(bd *service.BoxDetail) BoxResponse {
	return BoxResponse{
		BoxID:        bd.Box.ID,
		Code:         bd.Box.Code,
		LocationName: bd.LocationName,
	}
}
