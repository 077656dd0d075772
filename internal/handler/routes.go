package handler

import (
	"net/http"

	"github.com/abrito/financas/financas-sync/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, monthHandler *MonthHandler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public: this is how a device gets its session)
	auth := api.Group("/auth")
	auth.POST("/anonymous", authHandler.Anonymous)

	// Month document routes (protected, family-scoped)
	families := api.Group("/families/:familyId")
	families.Use(authMiddleware.Authenticate())
	families.Use(middleware.RateLimitMiddleware(rateLimiter))
	families.GET("/months/:key", monthHandler.GetMonth)
	families.PUT("/months/:key", monthHandler.PutMonth)
	families.GET("/months/:key/subscribe", monthHandler.Subscribe)
}
