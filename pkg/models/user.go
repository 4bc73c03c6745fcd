package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an account of the local identity driver.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:",pk" json:"id"`
	CreatedAt    time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	Email        string    `bun:",notnull" json:"email"`
	PasswordHash string    `json:"-"`
}
