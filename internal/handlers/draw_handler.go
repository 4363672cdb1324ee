package handlers

import (
	"net/http"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// DrawHandler handles admin-triggered draw runs
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
	}
}

// RunDue handles POST /admin/draws/run
func (h *DrawHandler) RunDue(c *gin.Context) {
	report, err := h.drawService.EvaluateDue(c.Request.Context())
	if err != nil {
		respondError(c, err, "Draw batch")
		return
	}
	c.JSON(http.StatusOK, report)
}

// EvaluateOne handles POST /admin/raffles/:id/evaluate
func (h *DrawHandler) EvaluateOne(c *gin.Context) {
	outcome, err := h.drawService.EvaluateOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Raffle evaluation")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// DrawAll handles POST /admin/raffles/:id/draw
func (h *DrawHandler) DrawAll(c *gin.Context) {
	outcomes, err := h.drawService.DrawAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Manual draw")
		return
	}
	drawn := 0
	for _, o := range outcomes {
		if o.Kind == models.OutcomeDrawn {
			drawn++
		}
	}
	c.JSON(http.StatusOK, gin.H{"drawn": drawn, "outcomes": outcomes})
}
