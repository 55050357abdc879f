package http

import (
	"errors"
	"net/http"

	"ecoclick-api/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// respondError maps domain errors to status codes. Anything unrecognised is a storage
// failure: it is logged and the client gets a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		abortWith(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		abortWith(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		abortWith(c, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		abortWith(c, http.StatusInternalServerError, "internal error")
	}
}

func badRequest(c *gin.Context, msg string) {
	abortWith(c, http.StatusBadRequest, msg)
}

func abortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{OK: false, Error: msg})
}
