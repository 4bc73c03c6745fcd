package auth

import (
	"github.com/labstack/echo/v4"
)

const contextKeyIdentity = "identity"

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate requires a valid bearer token belonging to a user with a
// profile.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.authService.Identify(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Set(contextKeyIdentity, id)
		return next(c)
	}
}

// RequireAdmin runs the admin check before the handler binds or touches
// anything.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.authService.CheckAdmin(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Set(contextKeyIdentity, id)
		return next(c)
	}
}

// FromContext returns the identity set by Authenticate or RequireAdmin.
func FromContext(c echo.Context) (*Identity, bool) {
	id, ok := c.Get(contextKeyIdentity).(*Identity)
	return id, ok
}
