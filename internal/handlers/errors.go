package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// statusFor maps service and repository errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, repositories.ErrInsufficientTickets):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrRaffleClosed),
		errors.Is(err, services.ErrRaffleBusy),
		errors.Is(err, services.ErrRaffleNotEvaluable),
		errors.Is(err, services.ErrConcurrentDraw),
		errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a gin.H error body. Internal errors are logged and not echoed.
func respondError(c *gin.Context, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(action+" failed", "error", err, "path", c.FullPath(), "requestId", c.GetString("RequestID"))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": action + " failed"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
