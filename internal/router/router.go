package router

import (
	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/controller"
	"github.com/lumeatelie/lume-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	cartController     *controller.CartController
	shippingController *controller.ShippingController
	orderController    *controller.OrderController
	addressController  *controller.AddressController
	uploadController   *controller.UploadController
	reportController   *controller.ReportController
	webhookController  *controller.WebhookController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	shippingController *controller.ShippingController,
	orderController *controller.OrderController,
	addressController *controller.AddressController,
	uploadController *controller.UploadController,
	reportController *controller.ReportController,
	webhookController *controller.WebhookController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		cartController:     cartController,
		shippingController: shippingController,
		orderController:    orderController,
		addressController:  addressController,
		uploadController:   uploadController,
		reportController:   reportController,
		webhookController:  webhookController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "LUME API is running",
		})
	})

	// Stripe calls this directly; it lives outside /api/v1 and skips the
	// cart-session and auth middleware.
	router.POST("/webhooks/stripe", r.webhookController.HandleStripeWebhook)

	// Cross-tab cart sync. The session token arrives as a query parameter
	// because browsers cannot set headers on websocket handshakes.
	router.GET("/ws/cart", r.cartController.Subscribe)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:slug", r.productController.GetProduct)
		}

		cart := v1.Group("/cart")
		cart.Use(middleware.CartSession())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddOrReplaceLine)
			cart.PUT("/items/:productId", r.cartController.SetQuantity)
			cart.DELETE("/items/:productId", r.cartController.RemoveLine)
		}

		shipping := v1.Group("/shipping")
		{
			shipping.POST("/estimate", r.shippingController.Estimate)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("",
				middleware.CartSession(),
				r.authMiddleware.OptionalAuthenticate(),
				r.orderController.CreateOrder,
			)
			orders.GET("", r.authMiddleware.Authenticate(), r.orderController.ListMyOrders)
			orders.GET("/:orderNumber", r.orderController.GetOrderByNumber)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
		}

		v1.GET("/cep/:cep", r.addressController.LookupCEP)

		uploads := v1.Group("/uploads")
		uploads.Use(middleware.CartSession())
		{
			uploads.POST("/personalization", r.uploadController.PresignUpload)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)

			admin.GET("/shipping/configs", r.shippingController.ListConfigs)
			admin.POST("/shipping/configs", r.shippingController.CreateConfig)
			admin.PUT("/shipping/configs/:id", r.shippingController.UpdateConfig)
			admin.DELETE("/shipping/configs/:id", r.shippingController.DeleteConfig)
			admin.GET("/shipping/settings", r.shippingController.GetSettings)
			admin.PUT("/shipping/settings", r.shippingController.UpdateSettings)

			admin.GET("/orders", r.orderController.ListOrders)
			admin.GET("/orders/export", r.reportController.ExportPaidOrders)
			admin.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Cart-Session")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Cart-Session, Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
