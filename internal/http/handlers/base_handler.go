// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"velo/internal/maps"
	"velo/internal/modules/pricing"
	"velo/internal/modules/supply"
	"velo/internal/types"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps the error taxonomy onto HTTP: validation failures are
// the caller's fault, dependency timeouts are retryable, everything else is
// opaque.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidCoordinate),
		errors.Is(err, pricing.ErrUnknownServiceType),
		errors.Is(err, pricing.ErrInvalidPassengerCount),
		errors.Is(err, supply.ErrBadEvent):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, maps.ErrTimeout):
		writeJSON(c, http.StatusGatewayTimeout, errorResponse{Error: err.Error(), Retryable: true})
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
