package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/rakbuku/rakbuku/pkg/identity"
	"github.com/rakbuku/rakbuku/pkg/profiles"
)

// RegisterRoutes registers the /auth routes and returns the middleware that
// guards the rest of the API.
func RegisterRoutes(e *echo.Echo, provider identity.Provider, profileService *profiles.Service) *Middleware {
	authService := NewService(provider, profileService)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		provider:       provider,
		profileService: profileService,
	}

	g := e.Group("/auth")
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me, authMiddleware.Authenticate)

	return authMiddleware
}
