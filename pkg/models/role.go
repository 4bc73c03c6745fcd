package models

import (
	"strings"

	"github.com/pkg/errors"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole resolves a stored role string into a Role. Stored values are
// compared case-insensitively since older rows were written as "ADMIN" or
// "Admin".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleMember):
		return RoleMember, nil
	}
	return "", errors.Errorf("unknown role %q", s)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
