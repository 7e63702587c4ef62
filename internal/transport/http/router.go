package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/handlers"
	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
)

type Deps struct {
	Guard           *mwauth.Guard
	AuthHandler     *handlers.AuthHandler
	AdminHandler    *handlers.AdminHandler
	CategoryHandler *handlers.CategoryHandler
	TopicHandler    *handlers.TopicHandler
	BrandHandler    *handlers.BrandHandler
	SeriesHandler   *handlers.SeriesHandler
	ProductHandler  *handlers.ProductHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	g := d.Guard
	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.GET("/verify/:token", d.AuthHandler.Verify)
	v1.POST("/resend-verification", d.AuthHandler.ResendVerification)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh, g.RequireRefresh)
	v1.POST("/logout", d.AuthHandler.Logout, g.RequireAnyToken)
	v1.GET("/user-info", d.AuthHandler.UserInfo, g.RequireAuth)

	admin := v1.Group("/admin", g.RequireAuth)
	admin.GET("/user-info", d.AdminHandler.UserInfo, g.RequireAdmin)
	admin.DELETE("/users/:id", d.AdminHandler.DeleteUser, g.RequireFresh, g.RequireAdmin)

	// Catalog reads are public; mutations need a fresh admin token.
	mutate := []echo.MiddlewareFunc{g.RequireAuth, g.RequireFresh, g.RequireAdmin}

	v1.GET("/category", d.CategoryHandler.GetCategories)
	v1.POST("/category", d.CategoryHandler.CreateCategory, mutate...)
	v1.GET("/category/:id", d.CategoryHandler.GetCategory)
	v1.PUT("/category/:id", d.CategoryHandler.UpdateCategory, mutate...)
	v1.DELETE("/category/:id", d.CategoryHandler.DeleteCategory, mutate...)

	v1.GET("/topics", d.TopicHandler.GetTopics)
	v1.POST("/topics", d.TopicHandler.CreateTopic, mutate...)
	v1.GET("/topics/:id", d.TopicHandler.GetTopic)
	v1.PUT("/topics/:id", d.TopicHandler.UpdateTopic, mutate...)
	v1.DELETE("/topics/:id", d.TopicHandler.DeleteTopic, mutate...)

	v1.GET("/brand", d.BrandHandler.GetBrands)
	v1.POST("/brand", d.BrandHandler.CreateBrands,
		g.RequireAuth, g.RequireFresh, g.RequireAdmin, g.RequireVerifiedEmail)
	v1.GET("/brand/series", d.SeriesHandler.GetAllSeries)
	v1.GET("/brand/:id", d.BrandHandler.GetBrand)
	v1.PUT("/brand/:id", d.BrandHandler.UpdateBrand, mutate...)
	v1.DELETE("/brand/:id", d.BrandHandler.DeleteBrand, mutate...)

	v1.GET("/brand/:id/series", d.SeriesHandler.GetSeriesByBrand)
	v1.POST("/brand/:id/series", d.SeriesHandler.CreateSeries, mutate...)
	v1.GET("/brand/:id/series/:sid", d.SeriesHandler.GetSeries)
	v1.PUT("/brand/:id/series/:sid", d.SeriesHandler.UpdateSeries, mutate...)
	v1.DELETE("/brand/:id/series/:sid", d.SeriesHandler.DeleteSeries, mutate...)

	v1.GET("/product", d.ProductHandler.GetProducts)
	v1.POST("/product", d.ProductHandler.CreateProduct, mutate...)
	v1.GET("/product/:id", d.ProductHandler.GetProduct)
	v1.PUT("/product/:id", d.ProductHandler.UpdateProduct, mutate...)
	v1.DELETE("/product/:id", d.ProductHandler.DeleteProduct, mutate...)

	v1.GET("/search", d.SearchHandler.Search)
}
