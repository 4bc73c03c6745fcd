package categories

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers category routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, categoryService *Service) {
	h := &handler{
		categoryService: categoryService,
	}

	g.GET("", h.list)
}
