package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/identity"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/rakbuku/rakbuku/pkg/profiles"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	provider       identity.Provider
	profileService *profiles.Service
}

// signup registers the account with the identity provider and gives it a
// member profile.
func (h *handler) signup(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := SignUpPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.provider.SignUp(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	profile := &models.Profile{ID: user.ID, RoleName: string(models.RoleMember)}
	if err := h.profileService.CreateProfile(ctx, profile); err != nil {
		return errors.WithStack(err)
	}
	log.Info("user signed up", logger.Data{"user_id": user.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
		"data": SignUpResponse{
			User: user,
			Role: string(profile.Role()),
		},
	}))
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	session, err := h.provider.SignIn(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, session))
}

func (h *handler) logout(c echo.Context) error {
	ctx := c.Request().Context()

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return errcodes.MissingAuthorizationHeader()
	}

	err := h.provider.SignOut(ctx, BearerToken(header))
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return errcodes.InvalidToken()
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	}))
}

func (h *handler) me(c echo.Context) error {
	id, ok := FromContext(c)
	if !ok {
		return errcodes.MissingAuthorizationHeader()
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": MeResponse{
			ID:      id.User.ID,
			Email:   id.User.Email,
			Role:    string(id.Role),
			IsAdmin: id.IsAdmin(),
		},
	}))
}
