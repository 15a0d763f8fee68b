package routes

import (
	"github.com/agusmuss/Ecom-Next/controllers"
	"github.com/agusmuss/Ecom-Next/middleware"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Orders   *controllers.OrderController
	Webhook  *controllers.WebhookController
}

func RegisterRoutes(r *gin.Engine, c Controllers, jwtSecret string) {
	// Public catalog
	r.GET("/products", c.Products.ListProducts)
	r.GET("/products/:id", c.Products.GetProduct)

	// Admin catalog editing
	admin := r.Group("/admin/products")
	admin.Use(middleware.RequireRole(jwtSecret, "admin"))
	admin.POST("", c.Products.CreateProduct)
	admin.PATCH("/:id", c.Products.UpdateProduct)
	admin.DELETE("/:id", c.Products.DeleteProduct)
	admin.POST("/:id/images/presign", c.Products.PresignUpload)

	// Authenticated storefront
	auth := r.Group("/")
	auth.Use(middleware.AuthRequired(jwtSecret))
	auth.GET("/cart", c.Cart.GetCart)
	auth.POST("/cart/items", c.Cart.AddItem)
	auth.DELETE("/cart/items/:productId", c.Cart.RemoveItem)
	auth.DELETE("/cart", c.Cart.ClearCart)
	auth.POST("/checkout", c.Checkout.Checkout)
	auth.GET("/orders", c.Orders.ListOrders)
	auth.GET("/orders/:sessionId", c.Orders.GetOrder)

	// Stripe webhook (no auth, signature-verified)
	r.POST("/stripe/webhook", c.Webhook.StripeWebhook)
}
