package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lifeoc/event-relay/app/email"
)

const (
	messageSuccess     = "Success!"
	messageParseFailed = "The email could not be parsed."
	messageFailed      = "The events could not be published."
)

func NewHandler(r RelayInterface, version, cmsEndpoint string) *Handler {
	return &Handler{
		relay:       r,
		version:     version,
		cmsEndpoint: cmsEndpoint,
	}
}

func (h *Handler) PostEmail(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		slog.Error("Failed to read request body", "request_id", c.GetString(requestIDKey), "error", err)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, messageParseFailed)
			return
		}
		c.String(http.StatusBadRequest, messageParseFailed)
		return
	}

	_, err = h.relay.Handle(c.Request.Context(), body, c.GetHeader("Content-Type"))

	status, message := responseFor(err)
	c.String(status, message)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"timestamp":    time.Now().In(time.Local).Format(time.RFC3339),
		"version":      h.version,
		"cms_endpoint": h.cmsEndpoint,
	})
}

// responseFor maps the outcome of a relay to what the caller sees. Error
// details stay in the log.
func responseFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, messageSuccess
	case errors.Is(err, email.ErrParse):
		return http.StatusBadRequest, messageParseFailed
	default:
		return http.StatusBadGateway, messageFailed
	}
}
