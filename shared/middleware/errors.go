package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/services/shared/apperr"
)

// StatusFor maps an error kind to its HTTP status. Conflicts are reported as
// 400 to match what clients of the services already expect.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as {"message": ...}. Internal errors are
// logged through the request logger and replaced by a generic message.
func RespondWithAppError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		RequestLogger(c).Error(c.Request.Context(), "request failed", "error", err)
	}
	RespondWithError(c, status, apperr.MessageOf(err, "Internal server error"))
}
