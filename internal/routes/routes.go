package routes

import (
	"floralie_back_end/internal/handlers"
	"floralie_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies rassemble les handlers construits dans cmd/server.
type Dependencies struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Reviews  *handlers.ReviewHandler
	Cart     *handlers.CartHandler
	Orders   *handlers.OrderHandler
	Admin    *handlers.AdminHandler
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://floralie.be"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")

	// Authentification
	auth := api.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)
	auth.GET("/profile", middleware.AuthRequired(), deps.Auth.Profile)
	auth.POST("/telegram/link", middleware.AuthRequired(), deps.Auth.TelegramLink)

	// Catalogue public
	api.GET("/products", deps.Products.ListProducts)
	api.GET("/products/search", deps.Products.SearchProducts)
	api.GET("/products/:id", deps.Products.GetProduct)
	api.GET("/products/:id/reviews", deps.Reviews.ListReviews)
	api.POST("/products/:id/reviews", middleware.AuthRequired(), deps.Reviews.CreateReview)

	// Panier : utilisateur connecté ou session anonyme X-Session-ID
	cartGroup := api.Group("/cart", middleware.OptionalAuth())
	cartGroup.GET("", deps.Cart.GetCart)
	cartGroup.POST("/add", deps.Cart.AddToCart)
	cartGroup.PUT("/:productId", deps.Cart.UpdateCartItem)
	cartGroup.DELETE("/clear", deps.Cart.ClearCart)
	cartGroup.DELETE("/:productId", deps.Cart.RemoveFromCart)

	// Commandes
	orderGroup := api.Group("/orders")
	orderGroup.GET("/statuses", deps.Orders.ListStatuses)
	orderGroup.POST("/checkout", middleware.OptionalAuth(), deps.Orders.Checkout)
	orderGroup.GET("", middleware.AuthRequired(), deps.Orders.MyOrders)
	orderGroup.GET("/:id", middleware.AuthRequired(), deps.Orders.GetOrder)

	// Administration
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	admin.GET("/orders", deps.Admin.ListOrders)
	admin.PUT("/orders/:id/status", deps.Admin.SetOrderStatus)
	admin.GET("/reports/sales", deps.Admin.SalesReport)
	admin.POST("/products", deps.Products.CreateProduct)
	admin.PUT("/products/:id", deps.Products.UpdateProduct)
	admin.DELETE("/products/:id", deps.Products.DeleteProduct)
	admin.POST("/products/:id/image", deps.Products.UploadProductImage)
}
