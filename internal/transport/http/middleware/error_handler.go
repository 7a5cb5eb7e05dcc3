// Package middleware file: internal/transport/http/middleware/error_handler.go
package middleware

import (
	"GestionBC/internal/core/port"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve), errors.Is(err, port.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrNotFound), errors.Is(err, port.ErrUnknownScreen), errors.Is(err, port.ErrUnknownColumn):
		return http.StatusNotFound
	case errors.Is(err, port.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, port.ErrFetchFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrorHandlingMiddleware renders the last error a handler attached with c.Error.
// Handlers that already wrote a response are left alone.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paramètres de requête invalides", "details": ve.Error()})
			return
		}

		status := StatusFor(err)
		switch status {
		case http.StatusBadGateway:
			// The view shows a full error state and offers a retry; no partial data.
			slog.Warn("upstream fetch failed", "path", c.FullPath(), "request_id", RequestIDFrom(c), "error", err)
			c.JSON(status, gin.H{"error": err.Error(), "retry": true})
		case http.StatusInternalServerError:
			slog.Error("request failed", "path", c.FullPath(), "request_id", RequestIDFrom(c), "error", err)
			c.JSON(status, gin.H{"error": "erreur interne du serveur"})
		default:
			c.JSON(status, gin.H{"error": err.Error()})
		}
	}
}
