package uploads

import (
	"github.com/labstack/echo/v4"
	"github.com/rakbuku/rakbuku/pkg/auth"
)

// RegisterRoutes registers POST /upload behind the admin check.
func RegisterRoutes(e *echo.Echo, uploadService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		uploadService: uploadService,
	}

	e.POST("/upload", h.upload, authMiddleware.RequireAdmin)
}
