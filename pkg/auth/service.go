package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/identity"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/rakbuku/rakbuku/pkg/profiles"
	"github.com/robinjoseph08/golib/logger"
)

// Identity is the outcome of a successful authorization check.
type Identity struct {
	User    *identity.User
	Profile *models.Profile
	Role    models.Role
}

func (i *Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

// Service resolves Authorization headers into users and roles. Nothing is
// cached: every call asks the identity provider and reads the profile.
type Service struct {
	provider       identity.Provider
	profileService *profiles.Service
}

func NewService(provider identity.Provider, profileService *profiles.Service) *Service {
	return &Service{provider, profileService}
}

// Identify exchanges the Authorization header for the caller's identity. A
// missing header is rejected before the identity provider is contacted.
func (s *Service) Identify(ctx context.Context, header string) (*Identity, error) {
	if strings.TrimSpace(header) == "" {
		return nil, errcodes.MissingAuthorizationHeader()
	}

	token := BearerToken(header)
	if token == "" {
		return nil, errcodes.InvalidToken()
	}

	user, err := s.provider.UserFromToken(ctx, token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidToken) {
			logger.FromContext(ctx).Err(err).Warn("identity provider lookup failed")
		}
		return nil, errcodes.InvalidToken()
	}

	profile, err := s.profileService.RetrieveProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Profile")) {
			return nil, errcodes.ProfileNotFound()
		}
		return nil, err
	}

	return &Identity{
		User:    user,
		Profile: profile,
		Role:    profile.Role(),
	}, nil
}

// CheckAdmin is Identify plus the requirement that the caller is an admin.
func (s *Service) CheckAdmin(ctx context.Context, header string) (*Identity, error) {
	id, err := s.Identify(ctx, header)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() {
		return nil, errcodes.Forbidden("Admin access required")
	}
	return id, nil
}

// BearerToken strips the Bearer scheme from an Authorization header value.
// Values without a scheme are taken as the token itself.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
