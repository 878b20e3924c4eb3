package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mesto-api/internal/domain"
)

// fail records err for the terminal responder and stops the chain. Handlers
// never translate errors themselves; kind-to-status mapping lives here only.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// errorResponder is the single terminal error handler: known kinds map to
// their status and client-safe message, everything else collapses to a
// generic 500 with no internal detail leaked.
func (h *Handler) errorResponder() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status := statusFor(domain.KindOf(err))
		message := domain.MessageOf(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
			message = "internal server error"
		}
		c.JSON(status, gin.H{"message": message})
	}
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
