package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Profile holds the application-side data of an identity provider user. Its ID
// is the provider's user id.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	RoleName  string    `bun:"role,notnull" json:"role"`
}

// Role resolves the stored role. Unknown values are treated as members so a
// malformed row never grants admin access.
func (p *Profile) Role() Role {
	role, err := ParseRole(p.RoleName)
	if err != nil {
		return RoleMember
	}
	return role
}
