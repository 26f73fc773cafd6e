package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trainup/training-api/internal/middleware"
	"github.com/trainup/training-api/internal/models"
	appErrors "github.com/trainup/training-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.APIClaims {
	value, exists := c.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.APIClaims)
	if !ok {
		return nil
	}
	return claims
}

// pathID parses a numeric path parameter, returning a validation error
// on malformed input.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}
