package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heretounderstand/ndole/internal/pkg/apperr"
)

// fail maps a classified service error onto an HTTP status and a JSON error
// body. Unclassified errors come back as a generic 500, never their raw text.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindExternal:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": apperr.MessageOf(err)})
}
