package testutils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/books"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/identity"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/rakbuku/rakbuku/pkg/profiles"
)

type handler struct {
	provider       identity.Provider
	profileService *profiles.Service
	bookService    *books.Service
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" default:"member"`
}

// createUser registers an account with the given role and signs it in.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	params := createUserRequest{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	role, err := models.ParseRole(params.Role)
	if err != nil {
		return errcodes.ValidationError(`"role" must be admin or member`)
	}

	user, err := h.provider.SignUp(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	if _, err := h.profileService.SetRole(ctx, user.ID, role); err != nil {
		return errors.WithStack(err)
	}

	session, err := h.provider.SignIn(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, session))
}

// deleteAllBooks clears the catalog.
// DELETE /test/books.
func (h *handler) deleteAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	n, err := h.bookService.DeleteAllBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": n,
	}))
}
