package books

import (
	"github.com/labstack/echo/v4"
	"github.com/rakbuku/rakbuku/pkg/auth"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
// Mutations run the admin check before anything is bound or read.
func RegisterRoutesWithGroup(g *echo.Group, bookService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		bookService: bookService,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/related", h.related)
	g.POST("", h.create, authMiddleware.RequireAdmin)
	g.PUT("/:id", h.update, authMiddleware.RequireAdmin)
	g.DELETE("/:id", h.deleteBook, authMiddleware.RequireAdmin)
}
