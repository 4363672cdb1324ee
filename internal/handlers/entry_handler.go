package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/winwai-raffle-backend/internal/middleware"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// EntryHandler handles ticket spending on raffles
type EntryHandler struct {
	entryService services.EntryService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryService services.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
	}
}

// EnterRaffleRequest is the body of POST /raffles/:id/entries
type EnterRaffleRequest struct {
	Tickets int `json:"tickets" binding:"required"`
}

// EnterRaffle handles POST /raffles/:id/entries
func (h *EntryHandler) EnterRaffle(c *gin.Context) {
	var request EnterRaffleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.entryService.Enter(c.Request.Context(), middleware.UserID(c), c.Param("id"), request.Tickets)
	if err != nil {
		respondError(c, err, "Enter raffle")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetMyEntries handles GET /users/me/entries?limit=
func (h *EntryHandler) GetMyEntries(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	entries, err := h.entryService.ListByUser(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err, "List entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}
