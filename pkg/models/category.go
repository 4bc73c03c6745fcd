package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Names of the categories seeded by the migrations.
const (
	CategoryFiction    = "Fiksi"
	CategoryNonFiction = "Non-Fiksi"
)

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	Name      string    `bun:",notnull" json:"name"`
}

// IsFiction reports whether the category is the fiction listing's category.
func (c *Category) IsFiction() bool {
	return strings.ToLower(strings.TrimSpace(c.Name)) == "fiksi"
}

// IsNonFiction reports whether the category belongs in the non-fiction
// listing. Spelling varies ("Non-Fiksi", "Non Fiksi", "nonfiksi").
func (c *Category) IsNonFiction() bool {
	name := strings.ToLower(c.Name)
	return strings.Contains(name, "non") && strings.Contains(name, "fiksi")
}
