package api

import (
	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/internal/webserver"
)

// InitRouter mounts every resource controller on the web server. The route
// table is the fixed external contract of the service.
func InitRouter(ws *webserver.WebServer) {
	e := ws.Echo()
	jwt := webserver.JwtMiddleware(ws.Config().Web.JwtSecret)
	adminOnly := restrictTo(domain.RoleAdmin)

	v1 := e.Group("/api/v1")

	// public catalog reads
	v1.GET("/products", listProducts)
	v1.GET("/products/:id", getProduct)
	v1.GET("/categories", listCategories)
	v1.GET("/categories/:id", getCategory)

	// authentication
	v1.POST("/users/signup", signup)
	v1.POST("/users/login", login)
	v1.POST("/users/forgetPassword", forgetPassword)
	v1.PATCH("/users/resetPassword/:token", resetPassword)

	// authenticated surface
	auth := v1.Group("", jwt, Protect)

	auth.PATCH("/users/updateMyPassword", updateMyPassword)
	auth.GET("/users/me", getMe)
	auth.PATCH("/users/updateMe", updateMe)
	auth.DELETE("/users/deleteMe", deleteMe)

	auth.GET("/addresses", listMyAddresses)
	auth.POST("/addresses", createAddress)
	auth.GET("/addresses/:id", getAddress)
	auth.PATCH("/addresses/:id", updateAddress)
	auth.DELETE("/addresses/:id", deleteAddress)

	auth.GET("/cart", getMyCart)
	auth.POST("/cart/items", addCartItem)
	auth.PATCH("/cart/items/:id", updateCartItem)
	auth.DELETE("/cart/items/:id", removeCartItem)
	auth.DELETE("/cart", clearCart)

	auth.POST("/orders", createOrder)
	auth.GET("/orders", listMyOrders)
	auth.GET("/orders/:id", getOrder)
	auth.PATCH("/orders/:id/cancel", cancelOrder)

	auth.GET("/reviews", listProductReviews)
	auth.POST("/reviews", createReview)
	auth.PATCH("/reviews/:id", updateReview)
	auth.DELETE("/reviews/:id", deleteReview)

	// catalog writes and user administration
	auth.POST("/products", createProduct, adminOnly)
	auth.PATCH("/products/:id", updateProduct, adminOnly)
	auth.DELETE("/products/:id", deleteProduct, adminOnly)
	auth.POST("/categories", createCategory, adminOnly)
	auth.DELETE("/categories/:id", deleteCategory, adminOnly)
	auth.PATCH("/orders/:id/status", adminUpdateOrderStatus, adminOnly)

	admin := auth.Group("/admin", adminOnly)
	admin.GET("/users", adminListUsers)
	admin.POST("/users", adminCreateUser)
	admin.GET("/users/:id", adminGetUser)
	admin.PATCH("/users/:id", adminUpdateUser)
	admin.DELETE("/users/:id", adminDeleteUser)
}
