// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/config"
	"github.com/javajoker/localshop-backend/internal/handlers"
	"github.com/javajoker/localshop-backend/internal/middleware"
	"github.com/javajoker/localshop-backend/internal/services"
	"github.com/javajoker/localshop-backend/internal/utils"
)

const version = "1.0.0"

// Initialize builds the engine and returns the notification service whose
// background sends must be drained before the database is closed.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.NotificationService) {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	authorizationService := services.NewAuthorizationService(db)

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	orderService := services.NewOrderService(db, notificationService)
	paymentService := services.NewPaymentService(db, cfg)
	adminService := services.NewAdminService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(adminService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	limiters := middleware.NewRateLimiters(cfg.RateLimit)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limiters.General)

	r.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":   status,
			"version":  version,
			"payments": paymentService.Enabled(),
		})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", limiters.Auth, authHandler.Register)
			auth.POST("/login", limiters.Auth, authHandler.Login)
			auth.POST("/refresh", limiters.Auth, authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		v1.GET("/products", productHandler.SearchProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.GET("/categories", productHandler.GetCategories)

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", limiters.Checkout, orderHandler.PlaceOrder)
			orders.GET("", orderHandler.ListMyOrders)
			orders.GET("/:id", orderHandler.GetMyOrder)
			orders.POST("/:id/payment-intent", limiters.Checkout, paymentHandler.CreatePaymentIntent)
			orders.POST("/:id/payment-confirm", limiters.Checkout, paymentHandler.ConfirmPayment)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		admin.Use(middleware.AdminRequired(authorizationService))
		admin.Use(middleware.AuditLogMiddleware(db))
		{
			admin.GET("/users", adminHandler.GetUsers)
			admin.PATCH("/users/:id", adminHandler.UpdateUserAccess)

			admin.GET("/products", productHandler.SearchProducts)
			admin.POST("/products", productHandler.CreateProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)

			admin.GET("/orders", orderHandler.ListOrders)
			admin.PATCH("/orders/:id", orderHandler.UpdateOrderStatus)
		}
	}

	return r, notificationService
}
