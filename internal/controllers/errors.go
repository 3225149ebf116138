package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps service errors onto the APIError envelope. Unknown
// errors are logged and reported as a bare 500.
func respondError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, models.ErrInternalServer, "Internal server error"

	switch {
	case errors.Is(err, services.ErrValidation):
		status, code, message = http.StatusBadRequest, models.ErrValidationFailed, err.Error()
	case errors.Is(err, services.ErrInvalidSize):
		status, code, message = http.StatusBadRequest, models.ErrInvalidSize, err.Error()
	case errors.Is(err, services.ErrInvalidStatus):
		status, code, message = http.StatusBadRequest, models.ErrInvalidStatus, err.Error()
	case errors.Is(err, services.ErrPizzaNotFound):
		status, code, message = http.StatusNotFound, models.ErrPizzaNotFound, err.Error()
	case errors.Is(err, services.ErrOrderNotFound):
		status, code, message = http.StatusNotFound, models.ErrOrderNotFound, "Order not found"
	case errors.Is(err, services.ErrUserNotFound):
		status, code, message = http.StatusNotFound, models.ErrNotFound, "User not found"
	case errors.Is(err, services.ErrClientNotFound):
		status, code, message = http.StatusNotFound, models.ErrClientNotFound, "Client not found"
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, models.ErrUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, code, message = http.StatusForbidden, models.ErrForbidden, "Not authorized to access this resource"
	case errors.Is(err, services.ErrUserExists), errors.Is(err, services.ErrPizzaNameTaken):
		status, code, message = http.StatusConflict, models.ErrConflict, err.Error()
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, models.NewAPIError(code, message))
}

// respondBindError reports a request body that failed gin binding
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid request body", map[string]interface{}{
		"reason": err.Error(),
	}))
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" format"))
		return 0, false
	}
	return uint(id), true
}
