// Package controllers holds the gin handlers of the local POS API.
// Handlers stay thin: bind, call the service or repository, map the
// error, respond with the shared envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/gateway"
	"github.com/rasoilabs/rasoipos/services"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

// tenantFrom reads the tenant the auth middleware resolved from the
// session token.
func tenantFrom(c *gin.Context) string {
	if v, ok := c.Get("tenantID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// respondServiceError maps the error kinds of the lower layers onto
// HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, gateway.ErrOffline):
		utils.RespondError(c, http.StatusServiceUnavailable, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
