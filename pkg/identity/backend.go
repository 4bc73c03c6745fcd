package identity

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/backend"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
)

// BackendProvider uses the hosted backend's auth API.
type BackendProvider struct {
	client *backend.Client
}

func NewBackendProvider(client *backend.Client) *BackendProvider {
	return &BackendProvider{client}
}

func (p *BackendProvider) UserFromToken(ctx context.Context, token string) (*User, error) {
	user := &User{}
	err := p.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/auth/v1/user",
		Token:  token,
	}, user)
	if err != nil {
		switch backend.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (p *BackendProvider) SignUp(ctx context.Context, email, password string) (*User, error) {
	// The response is either the user or, when email confirmation is off, a
	// session wrapping it.
	resp := struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		User  *User  `json:"user"`
	}{}
	err := p.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/signup",
		JSON:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, upstreamError(err)
	}
	if resp.User != nil {
		return resp.User, nil
	}
	if resp.ID == "" {
		return nil, errcodes.Upstream("Sign up returned no user")
	}
	return &User{ID: resp.ID, Email: resp.Email}, nil
}

func (p *BackendProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session := &Session{}
	err := p.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/token?grant_type=password",
		JSON:   map[string]string{"email": email, "password": password},
	}, session)
	if err != nil {
		if backend.StatusCode(err) == http.StatusBadRequest {
			return nil, errcodes.InvalidCredentials()
		}
		return nil, upstreamError(err)
	}
	return session, nil
}

func (p *BackendProvider) SignOut(ctx context.Context, token string) error {
	err := p.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/logout",
		Token:  token,
	}, nil)
	if err != nil {
		switch backend.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrInvalidToken
		}
		return upstreamError(err)
	}
	return nil
}

func upstreamError(err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return errors.WithStack(errcodes.ValidationError(apiErr.Message))
		}
		return errors.WithStack(errcodes.Upstream(apiErr.Message))
	}
	return err
}
