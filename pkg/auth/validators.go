package auth

import (
	"github.com/rakbuku/rakbuku/pkg/identity"
)

type SignUpPayload struct {
	Email    string `json:"email" mod:"trim" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginPayload struct {
	Email    string `json:"email" mod:"trim" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MeResponse is the current user along with their resolved role.
type MeResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

type SignUpResponse struct {
	User *identity.User `json:"user"`
	Role string         `json:"role"`
}
