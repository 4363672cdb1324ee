package handlers

import (
	"net/http"

	"github.com/ArowuTest/winwai-raffle-backend/internal/middleware"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// UserHandler handles the authenticated user's own records
type UserHandler struct {
	userService    *services.UserService
	voucherService services.VoucherService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, voucherService services.VoucherService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		voucherService: voucherService,
	}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetMyVouchers handles GET /users/me/vouchers
func (h *UserHandler) GetMyVouchers(c *gin.Context) {
	vouchers, err := h.voucherService.ListUserVouchers(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "List vouchers")
		return
	}
	c.JSON(http.StatusOK, vouchers)
}

// GetMyWinnings handles GET /users/me/winnings
func (h *UserHandler) GetMyWinnings(c *gin.Context) {
	winners, err := h.voucherService.ListUserWinnings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "List winnings")
		return
	}
	c.JSON(http.StatusOK, winners)
}

// GetVoucher handles GET /vouchers/:id. Only the owner or an admin can read a voucher.
func (h *UserHandler) GetVoucher(c *gin.Context) {
	voucher, err := h.voucherService.GetVoucher(c.Request.Context(), c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		respondError(c, err, "Get voucher")
		return
	}
	c.JSON(http.StatusOK, voucher)
}
