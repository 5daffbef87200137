package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers groups the route handlers.
type Handlers struct {
	Chat      *ChatHandler
	Companion *CompanionHandler
}

// NewServer creates the echo instance with middleware and routes.
func NewServer(h Handlers, limit RateLimitConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	Register(e, h, limit)
	return e
}

// Register mounts the routes on e.
func Register(e *echo.Echo, h Handlers, limit RateLimitConfig) {
	e.GET("/health", h.Chat.Health)

	api := e.Group("/api", RequireUser())
	api.POST("/chat/:chatId", h.Chat.Chat, RateLimit(limit))

	api.GET("/companion", h.Companion.List)
	api.POST("/companion", h.Companion.Create)
	api.GET("/companion/:companionId", h.Companion.Get)
	api.PATCH("/companion/:companionId", h.Companion.Update)
	api.DELETE("/companion/:companionId", h.Companion.Delete)
	api.GET("/companion/:companionId/messages", h.Companion.Messages)

	api.GET("/categories", h.Companion.Categories)
}
