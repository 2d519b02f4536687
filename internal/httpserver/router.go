package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkudrin/photostore/internal/handlers"
	mwauth "github.com/mkudrin/photostore/internal/middleware/auth"
	"github.com/mkudrin/photostore/internal/middleware/ratelimit"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	Photo    *handlers.PhotoHandler
	Category *handlers.CategoryHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Search   *handlers.SearchHandler

	AuthMW      *mwauth.Middleware
	AuthLimiter ratelimit.Limiter
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authGroup := e.Group("/auth")
	limited := authGroup.Group("", ratelimit.Middleware(d.AuthLimiter))
	limited.POST("/register", d.Auth.Register)
	limited.POST("/login", d.Auth.Login)
	authGroup.POST("/refresh", d.Auth.Refresh)
	authGroup.POST("/logout", d.Auth.Logout)
	authGroup.GET("/me", d.Auth.Me, d.AuthMW.RequireAuth)

	// Public catalog: a principal is attached when present so responses can
	// be personalized, but none is required.
	photos := e.Group("/photos", d.AuthMW.OptionalAuth)
	photos.GET("", d.Photo.GetPhotos)
	photos.GET("/:id", d.Photo.GetPhoto)

	e.GET("/categories", d.Category.GetCategories)
	e.GET("/search", d.Search.Search)

	admin := e.Group("/admin", d.AuthMW.RequireAdmin)
	admin.POST("/photos", d.Photo.CreatePhoto)
	admin.PATCH("/photos/:id", d.Photo.PatchPhoto)
	admin.DELETE("/photos/:id", d.Photo.DeletePhoto)
	admin.POST("/categories", d.Category.CreateCategory)
	admin.PATCH("/categories/:id", d.Category.PatchCategory)
	admin.DELETE("/categories/:id", d.Category.DeleteCategory)

	cart := e.Group("/cart", d.AuthMW.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("/:id", d.Cart.RemoveFromCart)

	checkout := e.Group("/checkout", d.AuthMW.RequireAuth)
	checkout.POST("/quote", d.Checkout.Quote)
	checkout.POST("/order", d.Checkout.CreateOrder)
	checkout.GET("/orders", d.Checkout.GetOrders)
}
