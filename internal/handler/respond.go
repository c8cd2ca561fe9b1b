// Package handler is the HTTP boundary: request DTOs, validation, and the
// mapping from the engine's error taxonomy to transport statuses.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaglebank/eagle-bank/internal/apperr"
	"github.com/eaglebank/eagle-bank/internal/middleware"
	"github.com/eaglebank/eagle-bank/internal/service"
)

// respondError maps a service error to its HTTP status. The engine's errors
// carry a Kind; anything unclassified is an internal error and its message is
// not echoed to the client.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	case apperr.KindForbidden:
		middleware.RespondWithError(c, http.StatusForbidden, err.Error())
	case apperr.KindConflict:
		middleware.RespondWithError(c, http.StatusConflict, err.Error())
	case apperr.KindInvalidArgument:
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case apperr.KindInsufficientFunds:
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case apperr.KindUnavailable:
		middleware.RespondWithError(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
