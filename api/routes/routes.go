package routes

import (
	"net/http"

	"github.com/ArowuTest/winwai-raffle-backend/internal/config"
	"github.com/ArowuTest/winwai-raffle-backend/internal/handlers"
	"github.com/ArowuTest/winwai-raffle-backend/internal/metrics"
	"github.com/ArowuTest/winwai-raffle-backend/internal/middleware"
	"github.com/ArowuTest/winwai-raffle-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds the handlers the router mounts
type HandlerDependencies struct {
	RaffleHandler *handlers.RaffleHandler
	EntryHandler  *handlers.EntryHandler
	UserHandler   *handlers.UserHandler
	DrawHandler   *handlers.DrawHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, tokens *jwt.TokenService, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(metrics.Instrument())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		raffles := public.Group("/raffles")
		{
			raffles.GET("", deps.RaffleHandler.ListRaffles)
			raffles.GET("/:id", deps.RaffleHandler.GetRaffle)
			raffles.GET("/:id/stats", deps.RaffleHandler.GetRaffleStats)
			raffles.GET("/:id/winners", deps.RaffleHandler.GetRaffleWinners)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokens))
	{
		protected.POST("/raffles/:id/entries", deps.EntryHandler.EnterRaffle)

		me := protected.Group("/users/me")
		{
			me.GET("", deps.UserHandler.GetMe)
			me.GET("/entries", deps.EntryHandler.GetMyEntries)
			me.GET("/vouchers", deps.UserHandler.GetMyVouchers)
			me.GET("/winnings", deps.UserHandler.GetMyWinnings)
		}

		protected.GET("/vouchers/:id", deps.UserHandler.GetVoucher)
	}

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/raffles", deps.RaffleHandler.CreateRaffle)
		admin.PUT("/raffles/:id/prize", deps.RaffleHandler.UpdatePrizeTerms)
		admin.POST("/raffles/:id/secret-codes", deps.RaffleHandler.AddSecretCodes)
		admin.POST("/raffles/:id/cancel", deps.RaffleHandler.CancelRaffle)
		admin.POST("/raffles/:id/evaluate", deps.DrawHandler.EvaluateOne)
		admin.POST("/raffles/:id/draw", deps.DrawHandler.DrawAll)
		admin.POST("/draws/run", deps.DrawHandler.RunDue)
	}

	return router
}
