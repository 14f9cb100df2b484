package handlers

import (
	"strconv"

	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error to its HTTP outcome. Anything that
// is not a StandardError is a store or programming fault and surfaces
// as a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if stdErr, ok := err.(*errors.StandardError); ok {
		if stdErr.HTTPStatus() >= 500 {
			logger.Error("Request failed",
				zap.String("error_code", stdErr.Code),
				zap.String("details", stdErr.Details),
				zap.String("path", c.Request.URL.Path),
			)
		}
		c.JSON(stdErr.HTTPStatus(), stdErr)
		return
	}
	logger.Error("Unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(500, errors.NewInternalError("internal server error", err))
}

// pathID parses the numeric :id path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, errors.NewInvalidRequest("invalid id", c.Param("id")))
		return 0, false
	}
	return id, true
}
