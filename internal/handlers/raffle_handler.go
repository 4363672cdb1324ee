package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// RaffleHandler handles raffle reads and administration
type RaffleHandler struct {
	raffleService  services.RaffleService
	voucherService services.VoucherService
}

// NewRaffleHandler creates a new RaffleHandler
func NewRaffleHandler(raffleService services.RaffleService, voucherService services.VoucherService) *RaffleHandler {
	return &RaffleHandler{
		raffleService:  raffleService,
		voucherService: voucherService,
	}
}

// ListRaffles handles GET /raffles?category=&all=&limit=
func (h *RaffleHandler) ListRaffles(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	filter := repositories.RaffleFilter{
		Category:   c.Query("category"),
		ActiveOnly: c.Query("all") != "true",
		Limit:      limit,
	}
	raffles, err := h.raffleService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "List raffles")
		return
	}
	c.JSON(http.StatusOK, raffles)
}

// GetRaffle handles GET /raffles/:id
func (h *RaffleHandler) GetRaffle(c *gin.Context) {
	raffle, err := h.raffleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Get raffle")
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// GetRaffleStats handles GET /raffles/:id/stats
func (h *RaffleHandler) GetRaffleStats(c *gin.Context) {
	stats, err := h.raffleService.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Raffle stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetRaffleWinners handles GET /raffles/:id/winners
func (h *RaffleHandler) GetRaffleWinners(c *gin.Context) {
	winners, err := h.voucherService.ListRaffleWinners(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "List winners")
		return
	}
	c.JSON(http.StatusOK, winners)
}

// CreateRaffle handles POST /admin/raffles
func (h *RaffleHandler) CreateRaffle(c *gin.Context) {
	var input services.CreateRaffleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raffle, err := h.raffleService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Create raffle")
		return
	}
	c.JSON(http.StatusCreated, raffle)
}

// UpdatePrizeTerms handles PUT /admin/raffles/:id/prize
func (h *RaffleHandler) UpdatePrizeTerms(c *gin.Context) {
	var input services.PrizeTermsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raffle, err := h.raffleService.UpdatePrizeTerms(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err, "Update prize terms")
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// AddSecretCodesRequest is the body of POST /admin/raffles/:id/secret-codes
type AddSecretCodesRequest struct {
	Codes []string `json:"codes" binding:"required"`
}

// AddSecretCodes handles POST /admin/raffles/:id/secret-codes
func (h *RaffleHandler) AddSecretCodes(c *gin.Context) {
	var request AddSecretCodesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raffle, err := h.raffleService.AddSecretCodes(c.Request.Context(), c.Param("id"), request.Codes)
	if err != nil {
		respondError(c, err, "Add secret codes")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"raffleId":       raffle.ID,
		"totalCodes":     len(raffle.SecretCodes),
		"availableCodes": len(raffle.CodePool().Available()),
	})
}

// CancelRaffle handles POST /admin/raffles/:id/cancel
func (h *RaffleHandler) CancelRaffle(c *gin.Context) {
	raffle, err := h.raffleService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Cancel raffle")
		return
	}
	c.JSON(http.StatusOK, raffle)
}
