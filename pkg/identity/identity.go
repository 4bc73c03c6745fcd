package identity

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/backend"
	"github.com/rakbuku/rakbuku/pkg/config"
	"github.com/uptrace/bun"
)

// ErrInvalidToken is returned when an access token doesn't identify a user.
var ErrInvalidToken = errors.New("invalid token")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        *User  `json:"user"`
}

// Provider exchanges credentials and access tokens for users.
type Provider interface {
	UserFromToken(ctx context.Context, token string) (*User, error)
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}

// New builds the provider selected by the config.
func New(cfg *config.Config, db *bun.DB) Provider {
	if cfg.IdentityDriver == config.IdentityDriverLocal {
		return NewLocalProvider(db, cfg.JWTSecret, cfg.TokenExpiry)
	}
	return NewBackendProvider(backend.NewClient(cfg.BackendURL, cfg.BackendAnonKey, cfg.HTTPClientTimeout))
}
