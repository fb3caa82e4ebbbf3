package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth     *AuthHTTP
	Cart     *CartHTTP
	Order    *OrderHTTP
	Address  *AddressHTTP
	Category *CategoryHTTP
	Product  *ProductHTTP
	User     *UserHTTP

	AuthMW *authmw.AuthMiddleware
	DB     Pinger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := d.DB.Ping(c.Request().Context()); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_error", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	requireAuth := d.AuthMW.RequireAuth
	adminOnly := d.AuthMW.RequireRole(models.RoleAdmin)
	catalogWriter := d.AuthMW.RequireRole(models.RoleAdmin, models.RoleSeller)

	auth := e.Group("/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/signin", d.Auth.Signin)
	auth.GET("/account-details", d.Auth.AccountDetails, requireAuth)
	auth.POST("/logout", d.Auth.Logout, requireAuth)

	cart := e.Group("/cart", requireAuth)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("/:cartItemId", d.Cart.RemoveFromCart)
	cart.PUT("/:cartItemId", d.Cart.UpdateQuantity)
	cart.GET("/content", d.Cart.Content)
	cart.GET("/total", d.Cart.Totals)
	cart.POST("/clear", d.Cart.Clear)

	orders := e.Group("/orders", requireAuth)
	orders.POST("", d.Order.PlaceOrder)
	orders.GET("", d.Order.ListOrders)
	orders.GET("/:id", d.Order.GetOrder)

	addr := e.Group("/addresses", requireAuth)
	addr.POST("", d.Address.Create)
	addr.GET("", d.Address.List)
	addr.GET("/default", d.Address.GetDefault)
	addr.PUT("/default/:id", d.Address.SetDefault)
	addr.PUT("/:id", d.Address.Update)
	addr.DELETE("/:id", d.Address.Delete)

	cats := e.Group("/categories")
	cats.GET("", d.Category.List)
	cats.GET("/:id", d.Category.Get)
	cats.GET("/:id/products", d.Category.Products, requireAuth)
	cats.POST("", d.Category.Create, adminOnly)
	cats.PUT("/:id", d.Category.Update, adminOnly)
	cats.DELETE("/:id", d.Category.Delete, adminOnly)
	cats.POST("/:id/products", d.Category.AddProduct, catalogWriter)

	products := e.Group("/products")
	products.GET("", d.Product.List, requireAuth)
	products.GET("/:keyword", d.Product.Search, requireAuth)
	products.PUT("/:id", d.Product.Update, catalogWriter)
	products.PUT("/:id/image", d.Product.UpdateImage, catalogWriter)
	products.DELETE("/:id", d.Product.Delete, catalogWriter)

	users := e.Group("/users", adminOnly)
	users.GET("", d.User.List)
	users.GET("/:id", d.User.Get)
	users.DELETE("/:id", d.User.Delete)
}
