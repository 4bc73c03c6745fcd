// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/rakbuku/rakbuku/pkg/books"
	"github.com/rakbuku/rakbuku/pkg/identity"
	"github.com/rakbuku/rakbuku/pkg/profiles"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, provider identity.Provider, profileService *profiles.Service, bookService *books.Service) {
	h := &handler{
		provider:       provider,
		profileService: profileService,
		bookService:    bookService,
	}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.DELETE("/books", h.deleteAllBooks)
}
