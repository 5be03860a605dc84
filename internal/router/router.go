// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/handler"
	"github.com/iliyamo/railway-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration and login under /v1/auth and
// the protected /v1/me endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.RoleUser, handler.RoleAdmin))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints. The
// cache middleware is applied per-route so authenticated endpoints
// are never served from cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/trains", p.ListTrains, cache)
	e.GET("/v1/trains/search", p.SearchTrains, cache)
	e.GET("/v1/stations", p.ListStations, cache)
}

// RegisterBookings registers the booking endpoints for authenticated
// users of either role.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleUser, handler.RoleAdmin))

	g.POST("/bookings", b.Create)
	g.GET("/bookings/:pnr", b.Get)
	g.DELETE("/bookings/:pnr", b.Cancel)
	g.GET("/my-bookings", b.ListMine)
}

// RegisterAdmin registers the reference-data and account management
// endpoints, restricted to the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleAdmin))

	g.GET("/users", a.ListUsers)
	g.PUT("/users/:username/password", a.UpdateUserPassword)
	g.DELETE("/users/:username", a.DeleteUser)

	g.POST("/trains", a.AddTrain)
	g.PATCH("/trains/:id", a.UpdateTrain)
	g.DELETE("/trains/:id", a.DeleteTrain)

	g.POST("/stations", a.AddStation)
}
