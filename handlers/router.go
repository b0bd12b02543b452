package handlers

import (
	"net/http"
	"time"

	"clanwallet/middleware"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries what the router needs besides the handlers
type RouterConfig struct {
	JWTSecret         string
	ServiceRoleKey    string
	RateLimiter       middleware.RateLimiter
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Metrics           middleware.HTTPMetrics
}

// NewRouter registers every route with its auth requirements
func NewRouter(cfg RouterConfig, wallet *WalletHandler, webhook *WebhookHandler, giveaway *GiveawayHandler, admin *AdminHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Metrics))
	router.Use(middleware.CORS())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/paystack-webhook", webhook.PaystackWebhook)
	router.POST("/deduct-monthly-tax", middleware.ServiceRole(cfg.ServiceRoleKey), admin.DeductMonthlyTax)
	router.POST("/send-notification", middleware.AuthOrServiceRole(cfg.JWTSecret, cfg.ServiceRoleKey), admin.SendNotification)

	authed := router.Group("/")
	authed.Use(middleware.Auth(cfg.JWTSecret))
	{
		authed.GET("/wallet", wallet.GetWallet)
		authed.POST("/verify-payment", wallet.VerifyPayment)

		limited := authed.Group("/")
		if cfg.RateLimiter != nil {
			limited.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		limited.POST("/transfer-funds", wallet.TransferFunds)
		limited.POST("/paystack-transfer", wallet.PaystackTransfer)
		limited.POST("/create-giveaway", giveaway.CreateGiveaway)
		limited.POST("/redeem-giveaway", giveaway.RedeemGiveaway)
		limited.POST("/process-earnings-cashout", admin.ProcessEarningsCashout)
	}

	// CORS runs for unmatched routes too, so preflights never get here
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}
