package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"midatopay.backend/internal/interfaces/http/handlers"
	"midatopay.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler        *handlers.AuthHandler
	walletHandler      *handlers.WalletHandler
	paymentHandler     *handlers.PaymentHandler
	transactionHandler *handlers.TransactionHandler
	oracleHandler      *handlers.OracleHandler
	realtimeHandler    *handlers.RealtimeHandler
	healthHandler      *handlers.HealthHandler
	metricsHandler     http.Handler
	authMiddleware     gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerOperationalRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/health", d.healthHandler.Health)
	r.GET("/metrics", gin.WrapH(d.metricsHandler))
	r.GET("/ws", d.realtimeHandler.Connect)
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
		}

		// Wallet routes (protected)
		wallet := v1.Group("/wallet")
		wallet.Use(d.authMiddleware)
		{
			wallet.GET("", d.walletHandler.GetWallet)
			wallet.GET("/export", d.walletHandler.ExportWallet)
			wallet.POST("/import", d.walletHandler.ImportWallet)
			wallet.DELETE("", d.walletHandler.DeleteWallet)
		}

		// Payment routes (protected)
		payments := v1.Group("/payments")
		payments.Use(d.authMiddleware)
		{
			payments.POST("", middleware.IdempotencyMiddleware(), d.paymentHandler.CreatePayment)
			payments.GET("", d.paymentHandler.ListPayments)
		}

		// QR lookup (public, for payers)
		v1.GET("/pay/:paymentId", d.paymentHandler.GetPayment)

		// Settlement routes (public, called by payer clients)
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", d.transactionHandler.CreateTransaction)
			transactions.POST("/confirm", d.transactionHandler.ConfirmTransaction)
			transactions.GET("/:paymentId", d.transactionHandler.GetTransaction)
		}

		oracle := v1.Group("/oracle")
		{
			oracle.GET("/price/:symbol", d.oracleHandler.GetPrice)
			oracle.GET("/convert", d.oracleHandler.Convert)
		}
	}
}
